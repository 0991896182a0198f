package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRosterFile(t *testing.T) {
	assert.True(t, IsRosterFile("report.csv"))
	assert.True(t, IsRosterFile("Report.XLSX"))
	assert.False(t, IsRosterFile("report.xls"))
	assert.False(t, IsRosterFile("report.pdf"))
	assert.False(t, IsRosterFile("report"))
}

func TestIsAccessCode(t *testing.T) {
	assert.True(t, IsAccessCode("1234"))
	assert.True(t, IsAccessCode(" 9999 "))
	assert.False(t, IsAccessCode("123"))
	assert.False(t, IsAccessCode("12345"))
	assert.False(t, IsAccessCode("12a4"))
	assert.False(t, IsAccessCode(""))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "roster.csv", SanitizeFileName("roster.csv"))
	assert.Equal(t, "roster.csv", SanitizeFileName("../../etc/roster.csv"))
	assert.Equal(t, "roster.csv", SanitizeFileName("C:\\Uploads\\roster.csv"))
	assert.Equal(t, "upload", SanitizeFileName(".."))
}
