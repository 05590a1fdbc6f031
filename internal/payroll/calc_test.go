package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDeductions(t *testing.T) {
	assert.Equal(t, 1_000_400.0, ComputeDeductions(10_000_000, 2))
	assert.Equal(t, 1_000_000.0, ComputeDeductions(10_000_000, 0))
	assert.Equal(t, 600.0, ComputeDeductions(0, 3))
	assert.Equal(t, 123.46, ComputeDeductions(1234.56, 0))
}

func TestNetSalary(t *testing.T) {
	deductions := ComputeDeductions(10_000_000, 2)
	assert.Equal(t, 9_499_600.0, NetSalary(10_000_000, 500_000, deductions))
	assert.Equal(t, 8_999_600.0, NetSalary(10_000_000, 0, deductions))
}
