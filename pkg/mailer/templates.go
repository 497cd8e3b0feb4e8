package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

const welcomeHTML = `<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #222;">
    <h2>Welcome to EasyPay, {{.Username}}!</h2>
    <p>Your seller account is registered. You can now list products and start
    accepting payments.</p>
    <p>Signed up with: {{.Email}}</p>
  </body>
</html>`

var welcomeTmpl = template.Must(template.New("welcome").Parse(welcomeHTML))

// Render produces subject, text and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case "welcome":
		var buf bytes.Buffer
		if err := welcomeTmpl.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		subject = "Welcome to EasyPay"
		text = fmt.Sprintf("Welcome to EasyPay, %v! Your seller account is registered.", data["Username"])
		return subject, text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
}
