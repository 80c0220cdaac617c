package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

var welcomeText = template.Must(template.New("welcome.txt").Parse(`Hi {{.Email}},

Your Weekplan account is ready. Sign in any time to arrange your week:

  {{.PlannerURL}}

Drag days to reorder them, edit a day to change its dish, or let the AI
recipe generator fill the week for you. Remember to press Save when you
are happy with the plan.

Weekplan.ai
`))

var welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome.html").Parse(`<!doctype html>
<html><body style="font-family:sans-serif;color:#222">
<p>Hi {{.Email}},</p>
<p>Your Weekplan account is ready.</p>
<p><a href="{{.PlannerURL}}" style="background:#2f855a;color:#fff;padding:8px 14px;border-radius:6px;text-decoration:none">Open your week plan</a></p>
<p>Drag days to reorder them, edit a day to change its dish, or let the AI recipe generator fill the week for you. Remember to press <b>Save</b> when you are happy with the plan.</p>
<p>Weekplan.ai</p>
</body></html>
`))

type welcomeData struct {
	Email      string
	PlannerURL string
}

// WelcomeMessage builds the mail sent once a new account is created.
func WelcomeMessage(email, appURL string) (Message, error) {
	data := welcomeData{Email: email, PlannerURL: appURL + "/weekplan.html"}

	var text, html bytes.Buffer
	if err := welcomeText.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render welcome mail: %w", err)
	}
	if err := welcomeHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render welcome mail html: %w", err)
	}

	return Message{
		To:      email,
		Subject: "Welcome to Weekplan",
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
