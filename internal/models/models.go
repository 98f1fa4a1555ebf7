package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Prompt statuses. The enum is free-form: moderators may move a prompt
// between any of the three states.
const (
	PromptStatusPending  = "pending"
	PromptStatusApproved = "approved"
	PromptStatusRejected = "rejected"
)

// Blog statuses.
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// StringList stores an ordered list of strings as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for StringList")
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// NowMillis returns the current time as Unix epoch milliseconds, the
// timestamp representation used across all records.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// User is an identity record keyed by the external identity provider's
// subject id. Local moderator accounts additionally carry a password hash.
type User struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	SubjectID       string `gorm:"uniqueIndex;size:128;not null" json:"subjectId"`
	Name            string `gorm:"size:200" json:"name"`
	Email           string `gorm:"size:255;index" json:"email"`
	Role            string `gorm:"size:20;default:user" json:"role"` // user, admin
	Password        string `gorm:"size:255" json:"-"`                // bcrypt hash, empty for provider-synced users
	IsSubscribed    bool   `gorm:"default:false" json:"isSubscribed"`
	PromptViewCount int    `gorm:"default:0" json:"promptViewCount"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt       int64  `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}

// Prompt is a submitted text template. Counters are monotonically
// non-decreasing; status moves freely between the three states.
type Prompt struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	Title          string     `gorm:"size:300;not null" json:"title"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	Excerpt        string     `gorm:"size:500" json:"excerpt"`
	Category       string     `gorm:"size:100;index" json:"category"` // Category.CategoryID
	Tags           StringList `gorm:"type:text" json:"tags"`
	AuthorID       string     `gorm:"size:128;index" json:"authorId"` // User.SubjectID
	AuthorName     string     `gorm:"size:200" json:"authorName"`
	Status         string     `gorm:"size:20;index;default:pending" json:"status"`
	UsageCount     int64      `gorm:"default:0" json:"usageCount"`
	ExecutionCount int64      `gorm:"default:0" json:"executionCount"`
	Featured       bool       `gorm:"default:false" json:"featured"`
	CreatedAt      int64      `gorm:"autoCreateTime:milli;index" json:"createdAt"`
	UpdatedAt      int64      `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}

// Category is a taxonomy entry. PromptCount is maintained by the recount
// scheduler, not transactionally.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CategoryID  string `gorm:"uniqueIndex;size:100;not null" json:"categoryId"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Icon        string `gorm:"size:100" json:"icon"`
	PromptCount int64  `gorm:"default:0" json:"promptCount"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt   int64  `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}

// Blog is a longer-form article addressed by slug. PublishedAt is set once,
// on the first transition into published, and never overwritten.
type Blog struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	Title           string     `gorm:"size:300;not null" json:"title"`
	Slug            string     `gorm:"uniqueIndex;size:300;not null" json:"slug"`
	Content         string     `gorm:"type:text" json:"content"`
	Excerpt         string     `gorm:"size:500" json:"excerpt"`
	MetaDescription string     `gorm:"size:500" json:"metaDescription"`
	MetaKeywords    StringList `gorm:"type:text" json:"metaKeywords"`
	Tags            StringList `gorm:"type:text" json:"tags"`
	AuthorID        string     `gorm:"size:128;index" json:"authorId"`
	AuthorName      string     `gorm:"size:200" json:"authorName"`
	Status          string     `gorm:"size:20;index;default:draft" json:"status"`
	Featured        bool       `gorm:"default:false" json:"featured"`
	PublishedAt     *int64     `gorm:"index" json:"publishedAt"`
	CreatedAt       int64      `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt       int64      `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}

// Favorite joins a user to a prompt. The (user, prompt) pair is unique.
type Favorite struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"size:128;uniqueIndex:idx_user_prompt;index" json:"userId"`
	PromptID  string `gorm:"size:36;uniqueIndex:idx_user_prompt;index" json:"promptId"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
}

// PromptExecution records a single run of a prompt against an AI provider.
type PromptExecution struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	PromptID  string  `gorm:"size:36;index" json:"promptId"`
	UserID    *string `gorm:"size:128;index" json:"userId"` // nil for anonymous runs
	Model     string  `gorm:"size:100" json:"model"`
	CreatedAt int64   `gorm:"autoCreateTime:milli" json:"createdAt"`
}

// LLMConfig is a provider configuration used by the prompt execution service.
type LLMConfig struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Provider    string  `gorm:"size:50;default:openai" json:"provider"` // openai, anthropic, ollama, gemini
	BaseURL     string  `gorm:"size:500" json:"base_url"`
	APIKey      string  `gorm:"size:500" json:"-"`
	Model       string  `gorm:"size:100" json:"model"`
	MaxTokens   int     `gorm:"default:2048" json:"max_tokens"`
	Temperature float64 `gorm:"default:0.7" json:"temperature"`
	IsDefault   bool    `gorm:"default:false" json:"is_default"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
	APIKeyMask  string  `gorm:"-" json:"api_key_mask,omitempty"`
	CreatedAt   int64   `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt   int64   `gorm:"autoUpdateTime:milli" json:"updated_at"`
}

// MaskAPIKey returns a masked API key for display.
func (l *LLMConfig) MaskAPIKey() string {
	if len(l.APIKey) <= 8 {
		return "****"
	}
	return l.APIKey[:4] + "****" + l.APIKey[len(l.APIKey)-4:]
}

// SystemLog is an operations/audit log row.
type SystemLog struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Level     string `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string `gorm:"size:100;index" json:"module"`
	Action    string `gorm:"size:200;index" json:"action"`
	Message   string `gorm:"type:text" json:"message"`
	Subject   string `gorm:"size:128;index" json:"subject"` // acting user's subject id
	IP        string `gorm:"size:50" json:"ip"`
	UserAgent string `gorm:"size:500" json:"user_agent"`
	Extra     string `gorm:"type:text" json:"extra"` // JSON extra data
	CreatedAt int64  `gorm:"autoCreateTime:milli;index" json:"created_at"`
}

// TableName overrides
func (User) TableName() string            { return "users" }
func (Prompt) TableName() string          { return "prompts" }
func (Category) TableName() string        { return "categories" }
func (Blog) TableName() string            { return "blogs" }
func (Favorite) TableName() string        { return "favorites" }
func (PromptExecution) TableName() string { return "prompt_executions" }
func (LLMConfig) TableName() string       { return "llm_configs" }
func (SystemLog) TableName() string       { return "system_logs" }
