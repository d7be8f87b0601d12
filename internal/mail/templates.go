package mail

import (
	"bytes"
	"text/template"
)

const (
	resetSubject   = "Reset your password"
	changedSubject = "Your password was changed"
)

var resetTmpl = template.Must(template.New("reset").Parse(
	`Hello {{.Name}},

A password reset was requested for your account. Use the token below to
set a new password:

{{.Token}}

The token expires shortly. If you did not request this, you can ignore
this message.
`))

var changedTmpl = template.Must(template.New("changed").Parse(
	`Hello {{.Name}},

The password for your account was just changed. If this was not you,
request a new password reset immediately.
`))

func renderResetBody(name, token string) (string, error) {
	var buf bytes.Buffer
	err := resetTmpl.Execute(&buf, struct {
		Name  string
		Token string
	}{Name: name, Token: token})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderChangedBody(name string) (string, error) {
	var buf bytes.Buffer
	if err := changedTmpl.Execute(&buf, struct{ Name string }{Name: name}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
