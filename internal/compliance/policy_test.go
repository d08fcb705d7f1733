package compliance_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v0xg/seoaudit/internal/compliance"
)

func TestDefaultPolicyInstruction(t *testing.T) {
	policy, err := compliance.Default()
	require.NoError(t, err)
	require.NotEmpty(t, policy.Rules)

	instruction := policy.Instruction()
	require.Contains(t, instruction, "COMPLIANCE POLICY")
	require.Contains(t, instruction, `"master bedroom" -> "primary bedroom"`)
}

func TestApplyReplacesWholeWordsCaseInsensitively(t *testing.T) {
	policy, err := compliance.Default()
	require.NoError(t, err)

	testCases := []struct {
		input    string
		expected string
	}{
		{input: "Family-Friendly homes with a Master Bedroom", expected: "spacious homes with a primary bedroom"},
		{input: "Within walking distance of downtown", expected: "Within near of downtown"},
		{input: "Exclusively remodeled", expected: "Exclusively remodeled"},
		{input: "", expected: ""},
	}

	for _, testCase := range testCases {
		require.Equal(t, testCase.expected, policy.Apply(testCase.input))
	}
}

func TestLoadCustomPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preamble: Be neutral.\nrules:\n  - avoid: cozy\n    use: compact\n"), 0o644))

	policy, err := compliance.Load(path)
	require.NoError(t, err)
	require.Equal(t, "compact studio", policy.Apply("Cozy studio"))

	_, err = compliance.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - use: nothing\n"), 0o644))
	_, err = compliance.Load(path)
	require.Error(t, err)
}

func TestNilPolicyIsInert(t *testing.T) {
	var policy *compliance.Policy
	require.Equal(t, "", policy.Instruction())
	require.Equal(t, "family-friendly", policy.Apply("family-friendly"))
}
