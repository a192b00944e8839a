package pixel

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rbright/aacboard/internal/store"
)

// LibraryKey is the storage key holding the image library.
const LibraryKey = "image-designer-library"

var (
	// ErrProtected reports an attempt to delete a starter image.
	ErrProtected = errors.New("cannot delete starter images")
	// ErrNotFound reports an unknown image id.
	ErrNotFound = errors.New("image not found")
	// ErrEmptyName reports a save without a usable name.
	ErrEmptyName = errors.New("image name must not be empty")
)

var (
	slugUnsafe = regexp.MustCompile(`[^a-z0-9]`)
	protected  = map[string]struct{}{"smiley": {}, "heart": {}, "star": {}}
)

// Image is one named library entry.
type Image struct {
	Name string `json:"name"`
	Data Grid   `json:"data"`
}

// Entry pairs an image with its library id.
type Entry struct {
	ID    string
	Image Image
}

// Library is the id-keyed image collection.
type Library map[string]Image

// Slug derives the library id from a display name.
func Slug(name string) string {
	return slugUnsafe.ReplaceAllString(strings.ToLower(name), "-")
}

// IsProtected reports whether id is a starter image.
func IsProtected(id string) bool {
	_, ok := protected[id]
	return ok
}

// Save stores grid under the slug of name and returns the id.
func (l Library) Save(name string, grid Grid) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	id := Slug(name)
	l[id] = Image{Name: strings.TrimSpace(name), Data: grid}
	return id, nil
}

// Delete removes id unless it is a starter image.
func (l Library) Delete(id string) error {
	if IsProtected(id) {
		return ErrProtected
	}
	if _, ok := l[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(l, id)
	return nil
}

// Get returns the image stored under id.
func (l Library) Get(id string) (Image, error) {
	img, ok := l[id]
	if !ok {
		return Image{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return img, nil
}

// Entries lists images sorted by id.
func (l Library) Entries() []Entry {
	out := make([]Entry, 0, len(l))
	for id, img := range l {
		out = append(out, Entry{ID: id, Image: img})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadLibrary reads the persisted library. A corrupt value yields an empty library and the error.
func LoadLibrary(ctx context.Context, r store.Reader) (Library, error) {
	lib := Library{}
	if _, err := store.GetJSON(ctx, r, LibraryKey, &lib); err != nil {
		return Library{}, err
	}
	if lib == nil {
		lib = Library{}
	}
	return lib, nil
}

// SaveLibrary persists the library.
func SaveLibrary(ctx context.Context, w store.Writer, lib Library) error {
	return store.SetJSON(ctx, w, LibraryKey, lib)
}
