// Package validate holds the input validation rules spec §7 assigns to
// release creation: studies must all be well-formed ids, URLs must parse,
// and the resulting errors name every offending value rather than stopping
// at the first one, matching the original Django serializer's behavior of
// reporting the complete set of bad ids in one response.
package validate

import (
	"net/url"
	"strings"

	"github.com/cuemby/coordinator/pkg/cerrors"
	"github.com/cuemby/coordinator/pkg/ids"
)

// Studies checks that every id in studies matches the study-id shape and
// that the list is non-empty, returning one Validation error naming every
// invalid id.
func Studies(studies []string) error {
	if len(studies) == 0 {
		return cerrors.Validation("studies: at least one study is required")
	}

	var bad []string
	for _, s := range studies {
		if !ids.ValidStudyID(s) {
			bad = append(bad, s)
		}
	}
	if len(bad) > 0 {
		return cerrors.Validation("studies: invalid study id(s): %s", strings.Join(bad, ", "))
	}
	return nil
}

// TaskServiceURL checks that raw is an absolute http(s) URL, since the
// coordinator dials it directly for health checks and task commands.
func TaskServiceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return cerrors.Validation("url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return cerrors.Validation("url: must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return cerrors.Validation("url: missing host in %q", raw)
	}
	return nil
}

// Name checks that name is non-empty and within a sane length, mirroring
// the field-level constraints the original model placed on CharFields.
func Name(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return cerrors.Validation("%s: must not be empty", field)
	}
	if len(name) > 255 {
		return cerrors.Validation("%s: must be 255 characters or fewer", field)
	}
	return nil
}

// Tags checks that every tag is a short, non-empty token.
func Tags(tags []string) error {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return cerrors.Validation("tags: must not contain empty values")
		}
		if len(tag) > 64 {
			return cerrors.Validation("tags: %q exceeds 64 characters", tag)
		}
	}
	return nil
}
