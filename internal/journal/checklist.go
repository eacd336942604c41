package journal

import (
	"errors"
	"fmt"
	"time"

	"trade-journal-go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultChecklist is the pre-market checklist template served for days
// without a saved entry.
var DefaultChecklist = []models.ChecklistItem{
	{ID: 1, Category: "Preparação Mental", Text: "Meditação/Respiração",
		Description: "5-10 minutos de respiração consciente ou meditação para acalmar a mente"},
	{ID: 2, Category: "Preparação Mental", Text: "Revisão do Estado Emocional",
		Description: "Avaliar se está em condições emocionais para operar (sem raiva, ansiedade ou euforia)"},
	{ID: 3, Category: "Preparação Mental", Text: "Definição de Expectativas",
		Description: "Lembrar que cada dia é único e não criar expectativas irreais de ganhos"},
	{ID: 4, Category: "Análise de Mercado", Text: "Revisão de Notícias Importantes",
		Description: "Verificar calendário econômico e notícias que podem impactar o mercado"},
	{ID: 5, Category: "Análise de Mercado", Text: "Análise do Contexto Macro",
		Description: "Entender o momento do mercado (tendência, volatilidade, liquidez)"},
	{ID: 6, Category: "Análise de Mercado", Text: "Identificação de Níveis Chave",
		Description: "Marcar suportes, resistências e áreas de interesse no gráfico"},
	{ID: 7, Category: "Gestão de Risco", Text: "Definição do Risco Máximo",
		Description: "Estabelecer o valor máximo que está disposto a perder no dia"},
	{ID: 8, Category: "Gestão de Risco", Text: "Verificação do Tamanho da Posição",
		Description: "Calcular o tamanho adequado da posição conforme seu risco por operação"},
	{ID: 9, Category: "Gestão de Risco", Text: "Revisão das Regras de Stop",
		Description: "Relembrar seus critérios de saída e comprometer-se a respeitá-los"},
	{ID: 10, Category: "Setup Operacional", Text: "Preparação do Ambiente",
		Description: "Organizar área de trabalho, monitores e ferramentas necessárias"},
	{ID: 11, Category: "Setup Operacional", Text: "Verificação das Conexões",
		Description: "Testar internet, plataforma e backup caso necessário"},
	{ID: 12, Category: "Setup Operacional", Text: "Revisão do Plano de Trading",
		Description: "Relembrar suas regras de entrada, alvos e gestão"},
}

const checklistDateLayout = "2006-01-02"

// ChecklistDay returns the user's checklist for one calendar day. Days
// without a saved entry get the default template with nothing checked.
func (s *Service) ChecklistDay(userID, date string) (models.ChecklistEntry, error) {
	if _, err := time.Parse(checklistDateLayout, date); err != nil {
		return models.ChecklistEntry{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	var entry models.ChecklistEntry
	err := s.db.Where("user_id = ? AND date = ?", userID, date).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		items := make([]models.ChecklistItem, len(DefaultChecklist))
		copy(items, DefaultChecklist)
		return models.ChecklistEntry{UserID: userID, Date: date, Items: items}, nil
	}
	if err != nil {
		return models.ChecklistEntry{}, fmt.Errorf("failed to load checklist: %w", err)
	}
	return entry, nil
}

// SaveChecklistDay upserts the user's checklist state for one day.
func (s *Service) SaveChecklistDay(userID, date string, items []models.ChecklistItem) (models.ChecklistEntry, error) {
	if _, err := time.Parse(checklistDateLayout, date); err != nil {
		return models.ChecklistEntry{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	entry := models.ChecklistEntry{
		UserID:    userID,
		Date:      date,
		Items:     items,
		UpdatedAt: time.Now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(&entry).Error
	if err != nil {
		return models.ChecklistEntry{}, fmt.Errorf("failed to save checklist: %w", err)
	}
	return entry, nil
}

// ChecklistMonth returns the derived status of each saved day in one month
// ("YYYY-MM"). Days without an entry are omitted; the caller treats them as
// pending.
func (s *Service) ChecklistMonth(userID, month string) (map[string]string, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, fmt.Errorf("%w: month must be YYYY-MM", ErrInvalidInput)
	}

	var entries []models.ChecklistEntry
	err := s.db.
		Where("user_id = ? AND date LIKE ?", userID, month+"-%").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist month: %w", err)
	}

	statuses := make(map[string]string, len(entries))
	for _, entry := range entries {
		statuses[entry.Date] = entry.Status()
	}
	return statuses, nil
}
