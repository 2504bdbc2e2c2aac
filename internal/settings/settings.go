// Package settings holds the process-wide widget configuration in a
// small key/value table. Admin changes apply immediately because every
// request loads a fresh snapshot.
package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Setting struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

func (Setting) TableName() string { return "chat_settings" }

const (
	keyProvider       = "api_provider"
	keyOpenAIKey      = "openai_key"
	keyOpenAIModel    = "openai_model"
	keyGeminiKey      = "gemini_key"
	keyGeminiModel    = "gemini_model"
	keyInstruction    = "instruction"
	keyWelcomeMessage = "welcome_message"
	keyBadgeTitle     = "badge_title"
	keyBadgeSubtitle  = "badge_subtitle"
	keyBadgeIcon      = "badge_icon"
	keyWidgetKey      = "widget_key"
)

// Fallbacks used when a key has never been written.
var loadDefaults = map[string]string{
	keyProvider:       "openai",
	keyOpenAIModel:    "gpt-4",
	keyGeminiModel:    "gemini-1.5-flash",
	keyWelcomeMessage: "Hello! How can I help you today?",
	keyBadgeTitle:     "Welcome to AI Assistant",
	keyBadgeSubtitle:  "How can we help you?",
	keyBadgeIcon:      "🤖",
}

// Chat is the per-request configuration snapshot handed to the
// conversation service.
type Chat struct {
	Provider       string `json:"api_provider"`
	OpenAIKey      string `json:"openai_key"`
	OpenAIModel    string `json:"openai_model"`
	GeminiKey      string `json:"gemini_key"`
	GeminiModel    string `json:"gemini_model"`
	Instruction    string `json:"instruction"`
	WelcomeMessage string `json:"welcome_message"`
	BadgeTitle     string `json:"badge_title"`
	BadgeSubtitle  string `json:"badge_subtitle"`
	BadgeIcon      string `json:"badge_icon"`
	WidgetKey      string `json:"-"`
}

func (c Chat) ActiveKey() string {
	if c.Provider == "gemini" {
		return c.GeminiKey
	}
	return c.OpenAIKey
}

func (c Chat) ActiveModel() string {
	if c.Provider == "gemini" {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load reads a fresh configuration snapshot.
func (s *Store) Load(ctx context.Context) (Chat, error) {
	var rows []Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return Chat{}, err
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Name] = r.Value
	}
	get := func(key string) string {
		if v, ok := values[key]; ok {
			return v
		}
		return loadDefaults[key]
	}

	return Chat{
		Provider:       get(keyProvider),
		OpenAIKey:      get(keyOpenAIKey),
		OpenAIModel:    get(keyOpenAIModel),
		GeminiKey:      get(keyGeminiKey),
		GeminiModel:    get(keyGeminiModel),
		Instruction:    get(keyInstruction),
		WelcomeMessage: get(keyWelcomeMessage),
		BadgeTitle:     get(keyBadgeTitle),
		BadgeSubtitle:  get(keyBadgeSubtitle),
		BadgeIcon:      get(keyBadgeIcon),
		WidgetKey:      get(keyWidgetKey),
	}, nil
}

// Save writes every admin-editable field. The widget key is managed
// separately through RegenerateWidgetKey.
func (s *Store) Save(ctx context.Context, c Chat) error {
	pairs := map[string]string{
		keyProvider:       strings.TrimSpace(c.Provider),
		keyOpenAIKey:      strings.TrimSpace(c.OpenAIKey),
		keyGeminiKey:      cleanAPIKey(c.GeminiKey),
		keyOpenAIModel:    strings.TrimSpace(c.OpenAIModel),
		keyGeminiModel:    strings.TrimSpace(c.GeminiModel),
		keyInstruction:    c.Instruction,
		keyWelcomeMessage: c.WelcomeMessage,
		keyBadgeTitle:     c.BadgeTitle,
		keyBadgeSubtitle:  c.BadgeSubtitle,
		keyBadgeIcon:      c.BadgeIcon,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, value := range pairs {
			if err := upsert(tx, name, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureDefaults seeds first-run values without touching keys an admin
// has already written. Fresh installs start on gemini; unseeded reads
// fall back to openai.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	seeds := map[string]string{
		keyProvider:       "gemini",
		keyOpenAIModel:    "gpt-4",
		keyGeminiModel:    "gemini-1.5-flash",
		keyWelcomeMessage: "Hello! How can I help you today?",
		keyBadgeTitle:     "Welcome to AI Assistant",
		keyBadgeSubtitle:  "How can we help you?",
		keyBadgeIcon:      "🤖",
		keyWidgetKey:      uuid.NewString(),
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, value := range seeds {
			var existing Setting
			err := tx.Where("name = ?", name).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Create(&Setting{Name: name, Value: value}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RegenerateWidgetKey replaces the embed key; previously issued widget
// snippets stop working immediately.
func (s *Store) RegenerateWidgetKey(ctx context.Context) (string, error) {
	key := uuid.NewString()
	if err := upsert(s.db.WithContext(ctx), keyWidgetKey, key); err != nil {
		return "", err
	}
	return key, nil
}

func upsert(tx *gorm.DB, name, value string) error {
	var existing Setting
	err := tx.Where("name = ?", name).First(&existing).Error
	if err == nil {
		existing.Value = value
		return tx.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&Setting{Name: name, Value: value}).Error
}

// cleanAPIKey strips label text ("Name", "API Key") that admins tend to
// paste along with the key itself.
func cleanAPIKey(raw string) string {
	out := stripFold(raw, "API Key")
	out = stripFold(out, "Name")
	return strings.TrimSpace(out)
}

func stripFold(s, label string) string {
	lower := strings.ToLower(s)
	label = strings.ToLower(label)
	var b strings.Builder
	for i := 0; i < len(s); {
		if strings.HasPrefix(lower[i:], label) {
			i += len(label)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
