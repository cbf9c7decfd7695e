package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"bidsmap/internal/faults"
)

// Policy selects the filename template.
type Policy string

const (
	PolicyPreserve Policy = "preserve"
	PolicyCustom   Policy = "custom"
	PolicyBIDS     Policy = "bids"
)

// ParsePolicy validates a policy name.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(value))); p {
	case PolicyPreserve, PolicyCustom, PolicyBIDS:
		return p, nil
	default:
		return "", faults.Wrap(faults.ErrConfig, "naming", "parse policy",
			fmt.Sprintf("unknown naming policy %q (want preserve, custom or bids)", value), nil)
	}
}

// Context identifies the subject and session being placed.
type Context struct {
	Subject string
	Session string
	Policy  Policy
}

// normalize strips entity prefixes an operator may have typed.
func (c Context) normalize() Context {
	c.Subject = strings.TrimPrefix(strings.TrimSpace(c.Subject), "sub-")
	c.Session = strings.TrimPrefix(strings.TrimSpace(c.Session), "ses-")
	return c
}

func (c Context) validate() error {
	if c.Subject == "" {
		return faults.Wrap(faults.ErrConfig, "naming", "validate", "subject is required", nil)
	}
	if c.Session == "" {
		return faults.Wrap(faults.ErrConfig, "naming", "validate", "session is required", nil)
	}
	for _, v := range []string{c.Subject, c.Session} {
		if strings.ContainsAny(v, `/\`) {
			return faults.Wrap(faults.ErrConfig, "naming", "validate",
				fmt.Sprintf("subject and session must not contain path separators: %q", v), nil)
		}
	}
	return nil
}

// Folder is the subject/session directory under the destination root for the
// configured policy.
func (c Context) Folder() string {
	if c.Policy == PolicyBIDS {
		return BIDSFolder(c.Subject, c.Session)
	}
	return filepath.Join(c.Subject, c.Session)
}

// BIDSFolder returns "sub-<subject>/ses-<session>".
func BIDSFolder(subject, session string) string {
	return filepath.Join("sub-"+subject, "ses-"+session)
}

// BIDSPrefix returns "sub-<subject>_ses-<session>".
func BIDSPrefix(subject, session string) string {
	return "sub-" + subject + "_ses-" + session
}
