package customfields

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tplx/internal/completion"
)

type failing struct{ err error }

func (f failing) Fetch(context.Context) ([]completion.CustomField, error) { return nil, f.err }

type slow struct {
	delay  time.Duration
	fields []completion.CustomField
}

func (s slow) Fetch(ctx context.Context) ([]completion.CustomField, error) {
	select {
	case <-time.After(s.delay):
		return s.fields, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestStaticReturnsCopy(t *testing.T) {
	src := StaticSource{{FieldName: "po"}}
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	got[0].FieldName = "changed"
	assert.Equal(t, "po", src[0].FieldName)
}

func TestMultiKeepsSourceOrder(t *testing.T) {
	src := MultiSource{
		slow{delay: 20 * time.Millisecond, fields: []completion.CustomField{{FieldName: "first"}}},
		StaticSource{{FieldName: "second"}, {FieldName: "third"}},
	}
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, f := range got {
		names = append(names, f.FieldName)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestMultiFailsOnAnyError(t *testing.T) {
	boom := errors.New("boom")
	src := MultiSource{
		slow{delay: time.Second, fields: []completion.CustomField{{FieldName: "never"}}},
		failing{err: boom},
	}
	start := time.Now()
	_, err := src.Fetch(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Less(t, time.Since(start), 900*time.Millisecond, "other sources are cancelled")
}

func TestActiveOnly(t *testing.T) {
	src := ActiveOnly(StaticSource{
		{FieldName: "on", IsActive: true},
		{FieldName: "off"},
	})
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "on", got[0].FieldName)

	_, err = ActiveOnly(failing{err: errors.New("x")}).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchAsync(t *testing.T) {
	res := <-FetchAsync(context.Background(), StaticSource{{FieldName: "po"}})
	require.NoError(t, res.Err)
	assert.Len(t, res.Fields, 1)

	ctx, cancel := context.WithCancel(context.Background())
	ch := FetchAsync(ctx, slow{delay: time.Minute})
	cancel()
	select {
	case res := <-ch:
		assert.ErrorIs(t, res.Err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not observe cancellation")
	}
}

func TestSourceFunc(t *testing.T) {
	var called bool
	src := SourceFunc(func(context.Context) ([]completion.CustomField, error) {
		called = true
		return []completion.CustomField{{FieldName: "region", IsActive: true}}, nil
	})

	res := <-FetchAsync(context.Background(), ActiveOnly(src))
	require.NoError(t, res.Err)
	assert.True(t, called)
	assert.Equal(t, []completion.CustomField{{FieldName: "region", IsActive: true}}, res.Fields)
}

func TestBuild(t *testing.T) {
	assert.Nil(t, Build(Options{}))

	src := Build(Options{URL: "http://example.invalid"})
	_, isHTTP := src.(*HTTPSource)
	assert.True(t, isHTTP)

	src = Build(Options{Files: []string{"a.json"}})
	assert.Equal(t, FileSource{Path: "a.json"}, src)

	src = Build(Options{URL: "http://example.invalid", Files: []string{"a.json", ""}})
	multi, ok := src.(MultiSource)
	require.True(t, ok)
	assert.Len(t, multi, 2)

	src = Build(Options{Files: []string{"a.json"}, ActiveOnly: true})
	_, wrapped := src.(activeOnly)
	assert.True(t, wrapped)
}

func TestBuildReadsTokenFromEnv(t *testing.T) {
	t.Setenv("TPLX_TEST_TOKEN", "s3cret")
	src := Build(Options{URL: "http://example.invalid", TokenEnv: "TPLX_TEST_TOKEN"})
	httpSrc, ok := src.(*HTTPSource)
	require.True(t, ok)
	assert.Equal(t, "s3cret", httpSrc.Token)
}
