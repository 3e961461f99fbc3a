package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pageza/recipebook/backend/internal/model"
)

const (
	defaultPrepTime = 15
	minPrepTime     = 5
	maxPrepTime     = 120
	defaultCookTime = 20
	minCookTime     = 5
	maxCookTime     = 360
	defaultCuisine  = "Other"
)

// RecipeDraft is a generated recipe ready to be merged into a form
type RecipeDraft struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     int      `json:"prepTime"`
	CookTime     int      `json:"cookTime"`
	CuisineType  string   `json:"cuisineType"`
	Tags         []string `json:"tags"`
}

// Instruction is a step the model may send as a string, an object or a
// scalar.
type Instruction struct {
	Text string
}

func (i *Instruction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		i.Text = str
		return nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err == nil && obj != nil {
		for _, key := range []string{"text", "step", "description"} {
			if v, ok := obj[key].(string); ok {
				i.Text = v
				return nil
			}
		}
		i.Text = encodeCompact(obj)
		return nil
	}

	// numbers, booleans and arrays keep their JSON spelling
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return err
	}
	i.Text = compact.String()
	return nil
}

// CuisineField picks the first string among cuisineType, cuisine and type.
type CuisineField struct {
	CuisineType json.RawMessage `json:"cuisineType"`
	Cuisine     json.RawMessage `json:"cuisine"`
	Type        json.RawMessage `json:"type"`
}

func (c CuisineField) Value() string {
	for _, raw := range []json.RawMessage{c.CuisineType, c.Cuisine, c.Type} {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return defaultCuisine
}

// Minutes accepts a JSON number or a numeric string. Anything else decodes
// to zero.
type Minutes int

func (m *Minutes) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*m = roundMinutes(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*m = roundMinutes(f)
			return nil
		}
	}

	*m = 0
	return nil
}

// maxMinutes bounds decoded values so the int conversion cannot overflow.
const maxMinutes = 1e6

func roundMinutes(f float64) Minutes {
	if math.IsNaN(f) {
		return 0
	}
	return Minutes(math.Round(math.Max(-maxMinutes, math.Min(maxMinutes, f))))
}

// Clamp substitutes def for zero and bounds the result to [lo, hi].
func (m Minutes) Clamp(def, lo, hi int) int {
	v := int(m)
	if v == 0 {
		v = def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type completeRecipePayload struct {
	Title        Instruction   `json:"title"`
	Description  Instruction   `json:"description"`
	Ingredients  []Instruction `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
	PrepTime     Minutes       `json:"prepTime"`
	CookTime     Minutes       `json:"cookTime"`
	Tags         []Instruction `json:"tags"`
	CuisineField
}

// ParseRecipeDraft decodes a generated recipe and applies the time defaults,
// time bounds and the tag cap.
func ParseRecipeDraft(data []byte) (*RecipeDraft, error) {
	var p completeRecipePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	tags := texts(p.Tags)
	if len(tags) > model.MaxTags {
		tags = tags[:model.MaxTags]
	}

	return &RecipeDraft{
		Title:        strings.TrimSpace(p.Title.Text),
		Description:  strings.TrimSpace(p.Description.Text),
		Ingredients:  texts(p.Ingredients),
		Instructions: texts(p.Instructions),
		PrepTime:     p.PrepTime.Clamp(defaultPrepTime, minPrepTime, maxPrepTime),
		CookTime:     p.CookTime.Clamp(defaultCookTime, minCookTime, maxCookTime),
		CuisineType:  p.CuisineField.Value(),
		Tags:         tags,
	}, nil
}

func texts(in []Instruction) []string {
	out := make([]string, 0, len(in))
	for _, i := range in {
		if t := strings.TrimSpace(i.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
