package alerts

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func digestSubject(alert Alert, found int) string {
	return fmt.Sprintf("JobNado Alert: %d New %s Jobs", found, alert.Role)
}

func confirmationSubject(alert Alert) string {
	return fmt.Sprintf("JobNado Radar Activated: %s", alert.Role)
}

// RenderDigest builds the HTML body listing the jobs found for an alert.
func RenderDigest(alert Alert, listings []Listing) (string, error) {
	heading := "Daily"
	if alert.Frequency == Weekly {
		heading = "Weekly"
	}

	return render("digest.html", struct {
		Heading  string
		Alert    Alert
		Listings []Listing
	}{heading, alert, listings})
}

// RenderConfirmation builds the HTML body sent after a subscription.
func RenderConfirmation(alert Alert, message string) (string, error) {
	return render("confirmation.html", struct {
		Alert   Alert
		Message string
	}{alert, message})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
