package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatehouse/pkg/domain-errors"
)

func TestParseID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"zero", "0", true},
		{"negative", "-4", true},
		{"not a number", "abc", true},
		{"SQL injection attempt", "1; DROP TABLE visitors;--", true},
		{"oversized input", strings.Repeat("9", 40), true},
		{"valid", "42", false},
		{"valid with padding", " 7 ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVisitID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	for _, input := range []string{"", "x", "0"} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errVisit := ParseVisitID(input)
			_, errPass := ParsePassID(input)
			_, errGuard := ParseGuardID(input)
			_, errResident := ParseResidentID(input)
			_, errPackage := ParsePackageID(input)
			_, errComplaint := ParseComplaintID(input)

			require.Error(t, errVisit)
			require.Error(t, errPass)
			require.Error(t, errGuard)
			require.Error(t, errResident)
			require.Error(t, errPackage)
			require.Error(t, errComplaint)
		})
	}

	guardID, err := ParseGuardID("12")
	require.NoError(t, err)
	assert.Equal(t, GuardID(12), guardID)
	assert.Equal(t, "12", guardID.String())

	packageID, err := ParsePackageID("5")
	require.NoError(t, err)
	assert.Equal(t, PackageID(5), packageID)
}
