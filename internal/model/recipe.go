package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxTags is the most tags a stored recipe carries.
const MaxTags = 3

// StringArray persists a string slice as a JSON column
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	// lib/pq sends []byte as bytea, which a jsonb column rejects.
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringArray", value)
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is the stored recipe document.
type Recipe struct {
	ID           string      `gorm:"primaryKey;size:36" json:"_id"`
	Title        string      `gorm:"size:255;not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	Ingredients  StringArray `gorm:"type:jsonb;not null" json:"ingredients"`
	Instructions StringArray `gorm:"type:jsonb;not null" json:"instructions"`
	ImageURL     string      `gorm:"size:512" json:"imageUrl"`
	PrepTime     int         `json:"prepTime"`
	CookTime     int         `json:"cookTime"`
	CuisineType  string      `gorm:"size:100;index" json:"cuisineType"`
	Tags         StringArray `gorm:"type:jsonb" json:"tags"`
	CreatedAt    time.Time   `gorm:"autoCreateTime:false;index" json:"createdAt"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// TotalTime is prep plus cook time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// Normalize applies the write-time rules: blank ingredients and instructions
// are dropped and tags are trimmed, deduplicated and capped at MaxTags.
func (r *Recipe) Normalize() {
	r.Ingredients = CompactStrings(r.Ingredients)
	r.Instructions = CompactStrings(r.Instructions)
	r.Tags = NormalizeTags(r.Tags)
}

// Validate checks caller-supplied fields.
func (r Recipe) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.By(notBlank)),
		validation.Field(&r.PrepTime, validation.Min(0)),
		validation.Field(&r.CookTime, validation.Min(0)),
		validation.Field(&r.Tags, validation.Length(0, MaxTags)),
	)
}

// Summary projects the fields shown in recipe lists.
func (r Recipe) Summary() RecipeSummary {
	tags := r.Tags
	if tags == nil {
		tags = StringArray{}
	}
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		ImageURL:    r.ImageURL,
		CuisineType: r.CuisineType,
		PrepTime:    r.PrepTime,
		CookTime:    r.CookTime,
		Tags:        tags,
	}
}

// RecipeSummary is a list entry.
type RecipeSummary struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	ImageURL    string      `json:"imageUrl"`
	CuisineType string      `json:"cuisineType"`
	PrepTime    int         `json:"prepTime"`
	CookTime    int         `json:"cookTime"`
	Tags        StringArray `json:"tags"`
}

// TotalTime is prep plus cook time in minutes.
func (s RecipeSummary) TotalTime() int {
	return s.PrepTime + s.CookTime
}

// CompactStrings drops empty and whitespace-only entries. The result is never nil.
func CompactStrings(in []string) StringArray {
	out := make(StringArray, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeTags trims, drops blanks, removes duplicates keeping first
// occurrence, and keeps at most MaxTags.
func NormalizeTags(in []string) StringArray {
	out := make(StringArray, 0, MaxTags)
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

func notBlank(value interface{}) error {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
}
