package client

import (
	"context"
	"errors"
	"sync"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/service"
)

// Assist messages shown to the user.
const (
	MsgMissingFields             = "Please fill in the title, ingredients, and instructions first."
	MsgMissingTitle              = "Please enter a recipe title first."
	MsgGenerateDescriptionFailed = "Failed to generate description. Please try again."
	MsgGenerateTagsFailed        = "Failed to generate tags. Please try again."
	MsgGenerateRecipeFailed      = "Failed to generate recipe. Please try again."
)

// ErrBusy is returned when the same assist operation is already running.
var ErrBusy = errors.New("operation already in progress")

// AssistAPI is what Assist needs from the API.
type AssistAPI interface {
	GenerateDescription(ctx context.Context, title string, ingredients, instructions []string) (string, error)
	SuggestTags(ctx context.Context, title string, ingredients, instructions []string) ([]string, error)
	GenerateCompleteRecipe(ctx context.Context, title string) (*service.RecipeDraft, error)
}

// Assist runs the AI helpers against a form's draft. Each operation has its
// own busy flag so the three can run side by side.
type Assist struct {
	api  AssistAPI
	form *RecipeForm

	mu           sync.Mutex
	descBusy     bool
	tagsBusy     bool
	completeBusy bool
	message      string
}

func NewAssist(api AssistAPI, form *RecipeForm) *Assist {
	return &Assist{api: api, form: form}
}

func (a *Assist) IsGeneratingDescription() bool { return a.flag(&a.descBusy) }
func (a *Assist) IsGeneratingTags() bool        { return a.flag(&a.tagsBusy) }
func (a *Assist) IsGeneratingComplete() bool    { return a.flag(&a.completeBusy) }

func (a *Assist) flag(b *bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *b
}

// Message is the last user-facing message, or "".
func (a *Assist) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message
}

func (a *Assist) setMessage(msg string) {
	a.mu.Lock()
	a.message = msg
	a.mu.Unlock()
}

// begin claims busy and returns the function that releases it.
func (a *Assist) begin(busy *bool) (func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if *busy {
		return nil, ErrBusy
	}
	*busy = true
	a.message = ""
	return func() {
		a.mu.Lock()
		*busy = false
		a.mu.Unlock()
	}, nil
}

// inputs returns the title and non-blank ingredients and instructions, or a
// validation error when any of them is missing.
func (a *Assist) inputs() (string, []string, []string, error) {
	d := a.form.Draft()
	ingredients := model.CompactStrings(d.Ingredients)
	instructions := model.CompactStrings(d.Instructions)
	if d.Title == "" || len(ingredients) == 0 || len(instructions) == 0 {
		return "", nil, nil, apperrors.NewValidationError(MsgMissingFields, nil)
	}
	return d.Title, ingredients, instructions, nil
}

func (a *Assist) fail(err error, fallback string) error {
	a.setMessage(UserMessage(err, fallback))
	return err
}

// GenerateDescription replaces the draft's description.
func (a *Assist) GenerateDescription(ctx context.Context) error {
	title, ingredients, instructions, err := a.inputs()
	if err != nil {
		a.setMessage(MsgMissingFields)
		return err
	}

	done, err := a.begin(&a.descBusy)
	if err != nil {
		return err
	}
	defer done()

	description, err := a.api.GenerateDescription(ctx, title, ingredients, instructions)
	if err != nil {
		return a.fail(err, MsgGenerateDescriptionFailed)
	}
	a.form.Update(func(r *model.Recipe) { r.Description = description })
	return nil
}

// GenerateTags merges suggested tags into the draft's tags.
func (a *Assist) GenerateTags(ctx context.Context) error {
	title, ingredients, instructions, err := a.inputs()
	if err != nil {
		a.setMessage(MsgMissingFields)
		return err
	}

	done, err := a.begin(&a.tagsBusy)
	if err != nil {
		return err
	}
	defer done()

	tags, err := a.api.SuggestTags(ctx, title, ingredients, instructions)
	if err != nil {
		return a.fail(err, MsgGenerateTagsFailed)
	}
	a.form.Update(func(r *model.Recipe) { r.Tags = MergeTags(r.Tags, tags) })
	return nil
}

// GenerateCompleteRecipe fills every generated field of the draft from the
// title alone. Title and image are left as they are.
func (a *Assist) GenerateCompleteRecipe(ctx context.Context) error {
	title := a.form.Draft().Title
	if title == "" {
		a.setMessage(MsgMissingTitle)
		return apperrors.NewValidationError(MsgMissingTitle, nil)
	}

	done, err := a.begin(&a.completeBusy)
	if err != nil {
		return err
	}
	defer done()

	draft, err := a.api.GenerateCompleteRecipe(ctx, title)
	if err != nil {
		return a.fail(err, MsgGenerateRecipeFailed)
	}
	a.form.Update(func(r *model.Recipe) {
		r.Description = draft.Description
		r.Ingredients = append(model.StringArray(nil), draft.Ingredients...)
		r.Instructions = append(model.StringArray(nil), draft.Instructions...)
		r.PrepTime = draft.PrepTime
		r.CookTime = draft.CookTime
		r.CuisineType = draft.CuisineType
		r.Tags = append(model.StringArray(nil), draft.Tags...)
	})
	return nil
}

// MergeTags appends suggested to existing, drops duplicates and keeps at
// most model.MaxTags.
func MergeTags(existing, suggested []string) model.StringArray {
	all := make([]string, 0, len(existing)+len(suggested))
	all = append(all, existing...)
	all = append(all, suggested...)
	return model.NormalizeTags(all)
}
