package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/gnolang/ccheck/internal/types"
)

type mockLintEngine struct {
	mock.Mock
}

func (m *mockLintEngine) Run(filePath string) ([]types.Issue, error) {
	args := m.Called(filePath)
	return args.Get(0).([]types.Issue), args.Error(1)
}

func (m *mockLintEngine) RunSource(source []byte) ([]types.Issue, error) {
	args := m.Called(source)
	return args.Get(0).([]types.Issue), args.Error(1)
}

func (m *mockLintEngine) IgnoreRule(rule string) {
	m.Called(rule)
}

func (m *mockLintEngine) IgnorePath(path string) {
	m.Called(path)
}

func setupMockEngine(expectedIssues []types.Issue, filePath string) *mockLintEngine {
	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", filePath).Return(expectedIssues, nil)
	return mockEngine
}

func setupSourceMockEngine(expectedIssues []types.Issue, content []byte) *mockLintEngine {
	mockEngine := new(mockLintEngine)
	mockEngine.On("RunSource", content).Return(expectedIssues, nil)
	return mockEngine
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	expectedIssues := []types.Issue{
		{
			Code:     "INVARIANT_VIOLATED",
			Filename: "foo.contracts.yaml",
			Type:     "Foo",
			Member:   "Foo::.ctor()",
			Message:  "Test issue",
		},
	}
	mockEngine := setupMockEngine(expectedIssues, "foo.contracts.yaml")

	issues, err := ProcessFile(mockEngine, "foo.contracts.yaml")

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
}

func TestProcessSource(t *testing.T) {
	t.Parallel()
	expectedIssues := []types.Issue{
		{
			Code:    "ENSURES_VIOLATED",
			Type:    "Foo",
			Member:  "Foo::Bar()",
			Message: "Test issue",
		},
	}
	mockEngine := setupSourceMockEngine(expectedIssues, []byte("name: foo"))

	issues, err := ProcessSource(mockEngine, []byte("name: foo"))

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
}

func TestProcessPath(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewProduction()
	ctx := context.Background()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "a.contracts.yaml", "b.contracts.yaml", "notes.yaml")

	expectedIssues := []types.Issue{
		{Code: "rule1", Filename: paths[0], Message: "Test issue 1"},
		{Code: "rule2", Filename: paths[1], Message: "Test issue 2"},
	}

	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", paths[0]).Return([]types.Issue{expectedIssues[0]}, nil)
	mockEngine.On("Run", paths[1]).Return([]types.Issue{expectedIssues[1]}, nil)

	issues, err := ProcessPath(ctx, logger, mockEngine, tempDir, ProcessFile)

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
	mockEngine.AssertNotCalled(t, "Run", paths[2])
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewProduction()
	ctx := context.Background()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "a.contracts.yaml", "b.contracts.yaml")

	expectedIssues := []types.Issue{
		{Code: "rule1", Filename: paths[0], Message: "Test issue 1"},
		{Code: "rule2", Filename: paths[1], Message: "Test issue 2"},
	}

	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", paths[0]).Return([]types.Issue{expectedIssues[0]}, nil)
	mockEngine.On("Run", paths[1]).Return([]types.Issue{expectedIssues[1]}, nil)

	issues, err := ProcessFiles(ctx, logger, mockEngine, paths, ProcessFile)

	assert.NoError(t, err)
	assert.Len(t, issues, 2)
	assert.Contains(t, issues, expectedIssues[0])
	assert.Contains(t, issues, expectedIssues[1])
	mockEngine.AssertExpectations(t)
}

func TestProcessSources(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewProduction()
	ctx := context.Background()

	expectedIssues := []types.Issue{
		{Code: "rule1", Message: "Test issue 1"},
		{Code: "rule2", Message: "Test issue 2"},
	}

	mockEngine := new(mockLintEngine)
	mockEngine.On("RunSource", []byte("name: one")).Return([]types.Issue{expectedIssues[0]}, nil)
	mockEngine.On("RunSource", []byte("name: two")).Return([]types.Issue{expectedIssues[1]}, nil)

	issues, err := ProcessSources(ctx, logger, mockEngine, [][]byte{[]byte("name: one"), []byte("name: two")}, ProcessSource)

	assert.NoError(t, err)
	assert.Len(t, issues, 2)
	assert.Contains(t, issues, expectedIssues[0])
	assert.Contains(t, issues, expectedIssues[1])
	mockEngine.AssertExpectations(t)
}

func TestHasDesiredExtension(t *testing.T) {
	t.Parallel()
	assert.True(t, hasDesiredExtension("foo.contracts.yaml"))
	assert.True(t, hasDesiredExtension("dir/foo.contracts.yaml"))
	assert.False(t, hasDesiredExtension("foo.yaml"))
	assert.False(t, hasDesiredExtension(".ccheck.yaml"))
	assert.False(t, hasDesiredExtension("test"))
}

func createTempFiles(t *testing.T, dir string, fileNames ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(fileNames))
	for _, fileName := range fileNames {
		filePath := filepath.Join(dir, fileName)
		f, err := os.Create(filePath)
		assert.NoError(t, err)
		f.Close()
		paths = append(paths, filePath)
	}
	return paths
}
