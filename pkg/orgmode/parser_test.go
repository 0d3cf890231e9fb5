package orgmode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `#+TITLE: Semester
* TODO [#A] Midterm review :exam:math:
  DEADLINE: <2026-10-20 Tue>
  :PROPERTIES:
  :SUBJECT: Calculus
  :END:
* DONE Lab report :lab:
  DEADLINE: <2026-10-02 Fri 09:00>
  :PROPERTIES:
  :SUBJECT: Chemistry
  :END:
* TODO Reading without subject
  DEADLINE: <2026-10-21 Wed>
  :PROPERTIES:
  :END:
* TODO No deadline
  :PROPERTIES:
  :SUBJECT: History
  :END:
* Notes
  :PROPERTIES:
  :SUBJECT: Ignored
  :END:
`

func TestParse(t *testing.T) {
	inputs, err := Parse(strings.NewReader(sample), "semester.org")
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, "Midterm review", inputs[0].Title)
	assert.Equal(t, "Calculus", inputs[0].Subject)
	assert.Equal(t, model.Exam, inputs[0].Type)
	assert.Equal(t, model.Date{Year: 2026, Month: time.October, Day: 20}, inputs[0].DueDate)
	assert.False(t, inputs[0].Completed)

	assert.Equal(t, "Lab report", inputs[1].Title)
	assert.Equal(t, model.Lab, inputs[1].Type)
	assert.Equal(t, model.Date{Year: 2026, Month: time.October, Day: 2}, inputs[1].DueDate)
	assert.True(t, inputs[1].Completed)
}

func TestParseUntaggedIsOther(t *testing.T) {
	org := "* TODO Essay draft :writing:\nDEADLINE: <2026-11-01 Sun>\n:PROPERTIES:\n:SUBJECT: English\n:END:\n"
	inputs, err := Parse(strings.NewReader(org), "x.org")
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, model.Other, inputs[0].Type)
	assert.Equal(t, "Essay draft", inputs[0].Title)
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.org")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	inputs, err := ParseFiles([]string{path, path})
	require.NoError(t, err)
	assert.Len(t, inputs, 4)

	_, err = ParseFiles([]string{filepath.Join(dir, "missing.org")})
	assert.Error(t, err)
}
