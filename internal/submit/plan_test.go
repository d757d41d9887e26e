package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErykKul/DataSync/internal/api"
	"github.com/ErykKul/DataSync/internal/diff"
)

func leaf(id, parent string, s diff.Status) diff.FileRecord {
	return diff.FileRecord{ID: id, Path: parent, Status: diff.SetStatus(s)}
}

func mirroredTree(t *testing.T) *diff.Tree {
	t.Helper()
	tree, err := diff.Build([]diff.FileRecord{
		leaf("a/b.txt", "a", diff.StatusNew),
		leaf("a/c.txt", "a", diff.StatusEqual),
		leaf("d.txt", "", diff.StatusDeleted),
	})
	require.NoError(t, err)
	tree.ApplySelection(diff.SelectMirror)
	return tree
}

func TestNewPlan_LeavesOnly(t *testing.T) {
	plan := NewPlan("job-1", diff.SelectMirror, mirroredTree(t))

	_, err := uuid.Parse(plan.ID)
	assert.NoError(t, err, "plan id is a uuid")
	assert.Equal(t, "job-1", plan.JobID)
	assert.Equal(t, "mirror", plan.Mode)
	assert.False(t, plan.CreatedAt.IsZero())

	ids := make([]string, len(plan.Records))
	for i, rec := range plan.Records {
		ids[i] = rec.ID
	}
	assert.Equal(t, []string{"a/b.txt", "a/c.txt", "d.txt"}, ids, "folder a is not submitted")

	pending := plan.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, diff.ActionCopy, pending[0].Action)
	assert.Equal(t, diff.ActionDelete, pending[1].Action)
	assert.NoError(t, plan.Validate())
}

func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr error
	}{
		{"no job", Plan{Records: []diff.FileRecord{{ID: "a"}}}, nil},
		{"no records", Plan{JobID: "j"}, ErrEmptyPlan},
		{"root record", Plan{JobID: "j", Records: []diff.FileRecord{{ID: ""}}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestFileSubmitter_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	plan := NewPlan("job-1", diff.SelectUpdate, mirroredTree(t))

	s := FileSubmitter{Fs: fs, Path: "/out/plans/plan.json"}
	require.NoError(t, s.Submit(context.Background(), plan))

	read, err := ReadPlan(fs, "/out/plans/plan.json")
	require.NoError(t, err)
	assert.Equal(t, plan.ID, read.ID)
	assert.Equal(t, plan.JobID, read.JobID)
	assert.True(t, plan.CreatedAt.Equal(read.CreatedAt))
	assert.Equal(t, plan.Records, read.Records)
}

func TestReadPlan_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := ReadPlan(fs, "/missing.json")
	assert.Contains(t, err.Error(), "does not exist")

	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte("{"), 0644))
	_, err = ReadPlan(fs, "/bad.json")
	assert.Contains(t, err.Error(), "failed to parse plan file")

	require.NoError(t, afero.WriteFile(fs, "/old.json", []byte(`{"version":"0"}`), 0644))
	_, err = ReadPlan(fs, "/old.json")
	assert.Contains(t, err.Error(), "unsupported plan version")
}

type mockStorer struct {
	storeFn func(ctx context.Context, req api.StoreRequest) (*api.StoreResponse, error)
}

func (m *mockStorer) Store(ctx context.Context, req api.StoreRequest) (*api.StoreResponse, error) {
	return m.storeFn(ctx, req)
}

func TestAPISubmitter(t *testing.T) {
	var got api.StoreRequest
	storer := &mockStorer{storeFn: func(_ context.Context, req api.StoreRequest) (*api.StoreResponse, error) {
		got = req
		return &api.StoreResponse{Status: "queued"}, nil
	}}

	s := &APISubmitter{
		Client:   storer,
		Template: api.StoreRequest{PersistentID: "doi:1", DataverseToken: "dv", RepoName: "hello"},
	}
	plan := NewPlan("job-1", diff.SelectMirror, mirroredTree(t))
	require.NoError(t, s.Submit(context.Background(), plan))

	assert.Equal(t, "doi:1", got.PersistentID)
	assert.Equal(t, "hello", got.RepoName)
	assert.Equal(t, "job-1", got.ID)
	assert.Equal(t, plan.ID, got.PlanID)
	assert.Equal(t, plan.Records, got.Data)
	assert.Equal(t, "queued", s.Response.Status)
}

func TestAPISubmitter_Error(t *testing.T) {
	storer := &mockStorer{storeFn: func(context.Context, api.StoreRequest) (*api.StoreResponse, error) {
		return nil, &api.StatusError{Code: 500}
	}}
	s := &APISubmitter{Client: storer}

	err := s.Submit(context.Background(), NewPlan("job-1", diff.SelectNone, mirroredTree(t)))
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Nil(t, s.Response)
}

func TestMulti_StopsAtFirstError(t *testing.T) {
	fs := afero.NewMemMapFs()
	failing := &APISubmitter{Client: &mockStorer{storeFn: func(context.Context, api.StoreRequest) (*api.StoreResponse, error) {
		return nil, errors.New("down")
	}}}

	m := Multi{FileSubmitter{Fs: fs, Path: "/plan.json"}, failing, FileSubmitter{Fs: fs, Path: "/never.json"}}
	err := m.Submit(context.Background(), NewPlan("job-1", diff.SelectNone, mirroredTree(t)))
	require.Error(t, err)

	exists, _ := afero.Exists(fs, "/plan.json")
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, "/never.json")
	assert.False(t, exists)
}
