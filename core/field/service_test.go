package field

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

type memRepo struct {
	mu       sync.Mutex
	versions map[Kind][]Template
}

func newMemRepo() *memRepo {
	return &memRepo{versions: make(map[Kind][]Template)}
}

func (r *memRepo) GetTemplate(_ context.Context, kind Kind) (Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vv := r.versions[kind]
	if len(vv) == 0 {
		return Template{}, ErrNotFound
	}
	return vv[len(vv)-1], nil
}

func (r *memRepo) SaveTemplate(_ context.Context, tpl Template) (Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl.Version != len(r.versions[tpl.Kind])+1 {
		return Template{}, ErrVersionConflict
	}
	r.versions[tpl.Kind] = append(r.versions[tpl.Kind], tpl)
	return tpl, nil
}

func (r *memRepo) QueryTemplateHistory(_ context.Context, kind Kind) ([]Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vv := r.versions[kind]
	history := make([]Template, 0, len(vv))
	for i := len(vv) - 1; i >= 0; i-- {
		history = append(history, vv[i])
	}
	return history, nil
}

func TestService(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	ctx := context.Background()
	svc := NewService(newMemRepo())

	t.Run("unsaved kind", func(t *testing.T) {
		tpl, err := svc.Get(ctx, KindTeacher)
		require.NoError(t, err)
		assert.Equal(t, Template{Kind: KindTeacher, Fields: []Descriptor{}}, tpl)

		all, err := svc.QueryAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, len(Kinds))
	})

	gender := Descriptor{Name: "gender", Type: TypeSelect, Visible: true, Options: []Option{{Value: "f"}}}
	notes := Descriptor{Name: "notes", Type: TypeTextarea, Visible: true, Order: 1}

	t.Run("save", func(t *testing.T) {
		tpl, err := svc.Save(ctx, KindStudent, UpdateTemplate{Fields: []Descriptor{gender}}, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, tpl.Version)
		assert.Equal(t, now, tpl.UpdatedAt)
		assert.Equal(t, "Gender", tpl.Fields[0].Label)

		tpl, err = svc.Save(ctx, KindStudent, UpdateTemplate{Fields: []Descriptor{gender, notes}}, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, tpl.Version)
	})

	t.Run("stale version", func(t *testing.T) {
		_, err := svc.Save(ctx, KindStudent, UpdateTemplate{Fields: []Descriptor{notes}}, 1)
		require.Error(t, err)
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok)
		assert.Equal(t, ErrVersionConflict, vErr.Err)
	})

	t.Run("move & reorder", func(t *testing.T) {
		tpl, err := svc.Move(ctx, KindStudent, "notes", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"notes", "gender"}, names(tpl.Sorted()))
		assert.Equal(t, 3, tpl.Version)

		tpl, err = svc.Reorder(ctx, KindStudent, []string{"gender", "notes"})
		require.NoError(t, err)
		assert.Equal(t, []string{"gender", "notes"}, names(tpl.Sorted()))

		_, err = svc.Reorder(ctx, KindStudent, []string{"gender"})
		require.Error(t, err)
	})

	t.Run("history", func(t *testing.T) {
		history, err := svc.History(ctx, KindStudent)
		require.NoError(t, err)
		require.Len(t, history, 4)
		assert.Equal(t, 4, history[0].Version)
		assert.Equal(t, 1, history[3].Version)
	})

	t.Run("install", func(t *testing.T) {
		_, installed, err := svc.Install(ctx, Template{Kind: KindStudent, Fields: []Descriptor{notes}})
		require.NoError(t, err)
		assert.False(t, installed, "kind already has a template")

		tpl, installed, err := svc.Install(ctx, Template{Kind: KindParent, Fields: []Descriptor{notes}})
		require.NoError(t, err)
		assert.True(t, installed)
		assert.Equal(t, 1, tpl.Version)

		_, _, err = svc.Install(ctx, Template{Kind: KindManager, Fields: []Descriptor{{Name: "Bad Name", Type: TypeText}}})
		assert.Error(t, err)
	})

	t.Run("schema", func(t *testing.T) {
		tpl, schema, err := svc.Schema(ctx, KindStudent)
		require.NoError(t, err)
		assert.Equal(t, 4, tpl.Version)
		assert.True(t, schema.Has("notes"))
		assert.False(t, schema.Has("age"))
	})
}
