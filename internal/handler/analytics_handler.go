package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/livepoll-api/internal/domain/entity"
	"github.com/yourusername/livepoll-api/internal/handler/dto"
	apperrors "github.com/yourusername/livepoll-api/internal/pkg/errors"
	"github.com/yourusername/livepoll-api/internal/service"
	"github.com/yourusername/livepoll-api/internal/service/sessionmanager"
)

// AnalyticsHandler обрабатывает HTTP-запросы аналитики опросов
type AnalyticsHandler struct {
	sessionManager *service.SessionManager
}

// NewAnalyticsHandler создает новый обработчик аналитики
func NewAnalyticsHandler(sessionManager *service.SessionManager) *AnalyticsHandler {
	return &AnalyticsHandler{sessionManager: sessionManager}
}

// roomFromContext возвращает комнату по ID, извлеченному middleware
func (h *AnalyticsHandler) roomFromContext(c *gin.Context) (*sessionmanager.Room, bool) {
	roomID := c.MustGet("roomID").(string)
	room, ok := h.sessionManager.GetRoom(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return nil, false
	}
	return room, true
}

// GetCurrentAnalytics возвращает снимок аналитики активного опроса.
// GET /api/analytics/current
// Отсутствие активного опроса — штатное состояние, а не ошибка HTTP.
func (h *AnalyticsHandler) GetCurrentAnalytics(c *gin.Context) {
	room, ok := h.roomFromContext(c)
	if !ok {
		return
	}

	snapshot, err := room.Analytics()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"error": "no-active-poll"})
			return
		}
		log.Printf("[AnalyticsHandler] Ошибка получения аналитики: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analytics"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetParticipation возвращает список участия студентов ростера.
// GET /api/analytics/participation
func (h *AnalyticsHandler) GetParticipation(c *gin.Context) {
	room, ok := h.roomFromContext(c)
	if !ok {
		return
	}

	entries, err := room.Participation()
	if err != nil {
		log.Printf("[AnalyticsHandler] Ошибка получения списка участия: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get participation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participation": entries})
}

// GetHistory возвращает историю завершенных опросов сессии.
// GET /api/analytics/history
func (h *AnalyticsHandler) GetHistory(c *gin.Context) {
	room, ok := h.roomFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": dto.NewHistoryResponse(room.History())})
}

// ExportAnalytics экспортирует данные опроса в CSV, JSON или Excel.
// GET /api/analytics/export?format=csv|json|xlsx
func (h *AnalyticsHandler) ExportAnalytics(c *gin.Context) {
	room, ok := h.roomFromContext(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "csv")

	snapshot, err := room.ExportSnapshot()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no-poll-to-export"})
			return
		}
		log.Printf("[AnalyticsHandler] Ошибка сборки снимка экспорта: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	filename := fmt.Sprintf("poll_results_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, snapshot, filename)
	case "json":
		h.exportJSON(c, snapshot, filename)
	default:
		h.exportCSV(c, snapshot, filename)
	}
}

// exportJSON отдает полный снимок одним JSON-документом
func (h *AnalyticsHandler) exportJSON(c *gin.Context, snapshot *sessionmanager.ExportSnapshot, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.json\"", filename))
	c.JSON(http.StatusOK, gin.H{
		"poll":          snapshot.Poll,
		"analytics":     snapshot.Analytics,
		"participation": snapshot.Participation,
		"timestamp":     time.Now().Format(time.RFC3339),
	})
}

// exportCSV экспортирует список участия с правильным экранированием спецсимволов
func (h *AnalyticsHandler) exportCSV(c *gin.Context, snapshot *sessionmanager.ExportSnapshot, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Student Name", "Has Answered", "Response Time (ms)", "Answer", "Correct", "Timestamp"})

	for _, entry := range snapshot.Participation {
		writer.Write(participationRow(entry))
	}
}

// participationRow превращает запись участия в строку экспорта
func participationRow(entry *entity.ParticipationEntry) []string {
	answered := "No"
	if entry.HasAnswered {
		answered = "Yes"
	}
	responseTime := ""
	if entry.ResponseTimeMs != nil {
		responseTime = strconv.FormatInt(*entry.ResponseTimeMs, 10)
	}
	correct := ""
	if entry.IsCorrect != nil {
		if *entry.IsCorrect {
			correct = "Yes"
		} else {
			correct = "No"
		}
	}
	timestamp := ""
	if entry.SubmittedAt != nil {
		timestamp = entry.SubmittedAt.Format(time.RFC3339)
	}
	return []string{
		sanitizeForExcel(entry.Name),
		answered,
		responseTime,
		sanitizeForExcel(entry.Answer.String()),
		correct,
		timestamp,
	}
}

// exportXLSX экспортирует данные в Excel с использованием StreamWriter
func (h *AnalyticsHandler) exportXLSX(c *gin.Context, snapshot *sessionmanager.ExportSnapshot, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Participation"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AnalyticsHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	// Шапка с вопросом и сводкой, затем таблица участия
	meta := [][]interface{}{
		{"Question", sanitizeForExcel(snapshot.Poll.Question)},
		{"Poll Type", string(snapshot.Poll.Type)},
		{"Total Students", snapshot.Analytics.TotalStudents},
		{"Answered", snapshot.Analytics.AnsweredStudents},
		{"Accuracy (%)", snapshot.Analytics.AccuracyRate},
		{"Avg Response Time (ms)", snapshot.Analytics.AverageResponseTime},
		{},
		{"Student Name", "Has Answered", "Response Time (ms)", "Answer", "Correct", "Timestamp"},
	}
	for i, row := range meta {
		cell := fmt.Sprintf("A%d", i+1)
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AnalyticsHandler] Ошибка записи строки %d: %v", i+1, err)
		}
	}

	for i, entry := range snapshot.Participation {
		rowNum := len(meta) + i + 1
		cell := fmt.Sprintf("A%d", rowNum)

		row := make([]interface{}, 0, 6)
		for _, v := range participationRow(entry) {
			row = append(row, v)
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AnalyticsHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AnalyticsHandler] Ошибка при Flush: %v", err)
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AnalyticsHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
