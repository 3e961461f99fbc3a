package client

import (
	"context"
	"io"
	"sync"

	"github.com/pageza/recipebook/backend/internal/model"
)

// Form messages shown to the user.
const (
	MsgSaveFailed   = "Failed to save recipe. Please try again."
	MsgUploadFailed = "Failed to upload image. Please try again."
)

// UploadState is the image upload progress of a form.
type UploadState string

const (
	UploadIdle      UploadState = "idle"
	UploadUploading UploadState = "uploading"
	UploadDone      UploadState = "done"
	UploadError     UploadState = "error"
)

// FormAPI is what RecipeForm needs from the API.
type FormAPI interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) (string, error)
	UpdateRecipe(ctx context.Context, id string, recipe *model.Recipe) (*model.Recipe, error)
	UploadImage(ctx context.Context, filename string, r io.Reader) (*ImageUpload, error)
}

// RecipeForm is the editable draft of a new or existing recipe.
type RecipeForm struct {
	api FormAPI
	id  string

	// OnSuccess, when set, runs after a successful save instead of Navigate.
	OnSuccess func()
	// Navigate receives "/recipes/{id}" after an update or "/" after a create.
	Navigate func(path string)

	mu         sync.Mutex
	draft      model.Recipe
	submitting bool
	upload     UploadState
	uploadSeq  uint64
	message    string
}

// NewRecipeForm starts a form. With existing == nil the draft is a new
// recipe with one empty ingredient and one empty instruction.
func NewRecipeForm(api FormAPI, existing *model.Recipe) *RecipeForm {
	f := &RecipeForm{api: api, upload: UploadIdle}
	if existing != nil {
		f.id = existing.ID
		f.draft = copyRecipe(*existing)
	} else {
		f.draft = model.Recipe{
			Ingredients:  model.StringArray{""},
			Instructions: model.StringArray{""},
			Tags:         model.StringArray{},
		}
	}
	return f
}

func copyRecipe(r model.Recipe) model.Recipe {
	r.Ingredients = append(model.StringArray(nil), r.Ingredients...)
	r.Instructions = append(model.StringArray(nil), r.Instructions...)
	r.Tags = append(model.StringArray(nil), r.Tags...)
	return r
}

// IsNew reports whether Submit will create rather than update.
func (f *RecipeForm) IsNew() bool {
	return f.id == ""
}

// Draft returns a copy of the current draft.
func (f *RecipeForm) Draft() model.Recipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyRecipe(f.draft)
}

// Update applies fn to the draft.
func (f *RecipeForm) Update(fn func(r *model.Recipe)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.draft)
}

func (f *RecipeForm) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *RecipeForm) UploadState() UploadState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upload
}

// Message is the last user-facing failure message, or "".
func (f *RecipeForm) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Submit strips blank ingredients and instructions and saves the draft.
func (f *RecipeForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	f.submitting = true
	f.message = ""
	payload := copyRecipe(f.draft)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	payload.Ingredients = model.CompactStrings(payload.Ingredients)
	payload.Instructions = model.CompactStrings(payload.Instructions)

	var err error
	path := "/"
	if f.IsNew() {
		_, err = f.api.CreateRecipe(ctx, &payload)
	} else {
		_, err = f.api.UpdateRecipe(ctx, f.id, &payload)
		path = "/recipes/" + f.id
	}
	if err != nil {
		f.mu.Lock()
		f.message = MsgSaveFailed
		f.mu.Unlock()
		return err
	}

	switch {
	case f.OnSuccess != nil:
		f.OnSuccess()
	case f.Navigate != nil:
		f.Navigate(path)
	}
	return nil
}

// UploadImage uploads r and stores the resulting URL on the draft. A newer
// upload supersedes an older one still in flight: the stale result neither
// changes the state nor the image URL.
func (f *RecipeForm) UploadImage(ctx context.Context, filename string, r io.Reader) error {
	f.mu.Lock()
	f.uploadSeq++
	seq := f.uploadSeq
	f.upload = UploadUploading
	f.mu.Unlock()

	res, err := f.api.UploadImage(ctx, filename, r)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.uploadSeq {
		return err
	}
	if err != nil {
		f.upload = UploadError
		f.message = MsgUploadFailed
		return err
	}
	f.draft.ImageURL = res.URL
	f.upload = UploadDone
	return nil
}
