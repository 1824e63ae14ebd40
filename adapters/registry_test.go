package adapters

import (
	"fmt"
	"sync"
	"testing"

	"github.com/brettbedarf/treefs/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister_SingleProvider(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	mockProvider := &mocks.MockSourceProvider{}

	r.Register(HTTPSourceType, mockProvider)
	provider, err := r.GetProvider(HTTPSourceType)

	require.NoError(t, err)
	assert.Same(t, mockProvider, provider)
}

func TestRegister_DuplicateProvider(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	mockProvider1 := &mocks.MockSourceProvider{}
	mockProvider2 := &mocks.MockSourceProvider{}

	r.Register("test", mockProvider1)
	r.Register("test", mockProvider2)

	provider, err := r.GetProvider("test")
	require.NoError(t, err)
	assert.Same(t, mockProvider1, provider, "first registration wins")
}

func TestRegister_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	r := NewRegistry()

	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sourceType := fmt.Sprintf("test%d", i)
			mockProvider := &mocks.MockSourceProvider{}
			r.Register(sourceType, mockProvider)
			provider, err := r.GetProvider(sourceType)
			assert.NoError(t, err)
			assert.Same(t, mockProvider, provider)
		}()
	}
	wg.Wait()
}

func TestGetProvider_NonExistentProvider(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.GetProvider("nonexistent")
	assert.Error(t, err)
}

func TestNewSource_ValidConfig(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	mockProvider := &mocks.MockSourceProvider{}
	mockSource := &mocks.MockContentSource{}
	r.Register("test", mockProvider)

	cfg := []byte(`{"type":"test"}`)
	mockProvider.On("NewSource", cfg).Return(mockSource, nil)
	ret, err := r.NewSource(cfg)
	require.NoError(t, err)
	mockProvider.AssertCalled(t, "NewSource", cfg)
	assert.Same(t, mockSource, ret)
}

func TestNewSource_MissingTypeField(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("test", &mocks.MockSourceProvider{})

	_, err := r.NewSource([]byte(`{"foo":"bar"}`))
	assert.Error(t, err)
}

func TestNewSource_UnregisteredProvider(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().NewSource([]byte(`{"type":"foo"}`))
	assert.Error(t, err)
}

func TestNewSource_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().NewSource([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestNewSource_ProviderError(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	mockProvider := &mocks.MockSourceProvider{}
	r.Register("test", mockProvider)

	expErr := fmt.Errorf("test error")
	mockProvider.On("NewSource", mock.Anything).Return(nil, expErr)

	_, err := r.NewSource([]byte(`{"type":"test"}`))
	require.Error(t, err)
	mockProvider.AssertExpectations(t)
	assert.Equal(t, expErr, err)
}

func TestRegisterBuiltins(t *testing.T) {
	t.Parallel()

	t.Run("All", func(t *testing.T) {
		r := NewRegistry()
		RegisterBuiltins(r)
		for _, key := range []string{InlineSourceType, FileSourceType, HTTPSourceType} {
			_, err := r.GetProvider(key)
			assert.NoError(t, err, key)
		}
	})

	t.Run("Subset", func(t *testing.T) {
		r := NewRegistry()
		RegisterBuiltins(r, InlineSourceType)
		_, err := r.GetProvider(InlineSourceType)
		assert.NoError(t, err)
		_, err = r.GetProvider(HTTPSourceType)
		assert.Error(t, err)
	})

	t.Run("KeepsPreRegistered", func(t *testing.T) {
		r := NewRegistry()
		custom := &FileProvider{BaseDir: "/srv"}
		r.Register(FileSourceType, custom)
		RegisterBuiltins(r)
		got, err := r.GetProvider(FileSourceType)
		require.NoError(t, err)
		assert.Same(t, custom, got)
	})
}
