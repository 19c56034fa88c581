package validate_test

import (
	"testing"

	"github.com/cuemby/coordinator/pkg/cerrors"
	"github.com/cuemby/coordinator/pkg/validate"
	"github.com/stretchr/testify/require"
)

func TestStudiesRejectsEmpty(t *testing.T) {
	err := validate.Studies(nil)
	require.True(t, cerrors.Is(err, cerrors.KindValidation))
}

func TestStudiesReportsAllInvalidIDs(t *testing.T) {
	err := validate.Studies([]string{"SD_00000001", "bad-1", "also-bad"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad-1")
	require.Contains(t, err.Error(), "also-bad")
	require.NotContains(t, err.Error(), "SD_00000001")
}

func TestStudiesAcceptsValid(t *testing.T) {
	require.NoError(t, validate.Studies([]string{"SD_00000001", "SD_00000002"}))
}

func TestTaskServiceURL(t *testing.T) {
	require.NoError(t, validate.TaskServiceURL("http://svc.local:8080"))
	require.Error(t, validate.TaskServiceURL("not a url either way://"))
	require.Error(t, validate.TaskServiceURL("ftp://svc.local"))
}

func TestName(t *testing.T) {
	require.NoError(t, validate.Name("name", "ok"))
	require.Error(t, validate.Name("name", "   "))
}

func TestTags(t *testing.T) {
	require.NoError(t, validate.Tags([]string{"a", "b"}))
	require.Error(t, validate.Tags([]string{""}))
}
