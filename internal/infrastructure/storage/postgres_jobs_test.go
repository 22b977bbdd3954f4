package storage

import (
	"testing"

	"ContentForge/internal/domain"
)

func TestLegalPrior(t *testing.T) {
	t.Parallel()

	cases := []struct {
		target domain.JobStatus
		prior  domain.JobStatus
		ok     bool
	}{
		{domain.JobStatusProcessing, domain.JobStatusPending, true},
		{domain.JobStatusCompleted, domain.JobStatusProcessing, true},
		{domain.JobStatusFailed, domain.JobStatusProcessing, true},
		{domain.JobStatusPending, "", false},
		{"bogus", "", false},
	}

	for _, tc := range cases {
		prior, ok := legalPrior(tc.target)
		if prior != tc.prior || ok != tc.ok {
			t.Errorf("legalPrior(%q) = (%q, %v), want (%q, %v)",
				tc.target, prior, ok, tc.prior, tc.ok)
		}
	}
}

func TestNullable(t *testing.T) {
	t.Parallel()

	if nullable("") != nil {
		t.Error("empty string must map to NULL")
	}
	if got := nullable("x"); got != "x" {
		t.Errorf("nullable(\"x\") = %v", got)
	}
}
