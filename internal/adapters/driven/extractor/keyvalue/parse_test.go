package keyvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLines(t *testing.T) {
	text := `UDYAM REGISTRATION CERTIFICATE
Applicant Name: Ramesh Kumar
Name of Enterprise :  Kumar Textiles
Date of Commencement of Business: 01/04/2015 10:30
Mobile:
  Email	ramesh@example.com
Applicant Name: Someone Else
: no label
`

	fields := ParseLines(text)

	assert.Equal(t, map[string]string{
		"Applicant Name":                   "Ramesh Kumar",
		"Name of Enterprise":               "Kumar Textiles",
		"Date of Commencement of Business": "01/04/2015 10:30",
		"Email":                            "ramesh@example.com",
	}, fields)
}

func TestParseLines_Empty(t *testing.T) {
	assert.Empty(t, ParseLines(""))
	assert.Empty(t, ParseLines("no separators here\nat all"))
}
