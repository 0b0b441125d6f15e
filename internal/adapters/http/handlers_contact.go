package web

import (
	"errors"
	"net/http"

	"campusverse/internal/application/orchestrators"
	"campusverse/internal/domain/contact"
)

// ContactChannel is one way of reaching the team.
type ContactChannel struct {
	Title       string
	Value       string
	Description string
}

// FAQ is one frequently asked question.
type FAQ struct {
	Question string
	Answer   string
}

var faqs = []FAQ{
	{"How do I upload resources?", "Navigate to the Resources page and click the 'Upload Resource' button. Make sure your file meets our guidelines for size and format."},
	{"Can I connect with students from other campuses?", "Currently, The CampusVerse is focused on IIM Rohtak, but we plan to expand to other campuses in the future."},
	{"How do I reset my password?", "Click 'Forgot Password?' on the login page and follow the instructions sent to your email address."},
	{"Is my personal information secure?", "Yes, we take privacy seriously. Your personal information is encrypted and never shared with third parties without your consent."},
}

// contactView is the data for contact.html.
type contactView struct {
	Form     orchestrators.SubmitContactInput
	Errors   contact.ValidationErrors
	Sent     bool
	Subjects []contact.SubjectOption
	Channels []ContactChannel
	FAQs     []FAQ
	MaxLen   int
}

func (s *Server) contactView() contactView {
	return contactView{
		Subjects: contact.Subjects,
		Channels: []ContactChannel{
			{Title: "Email", Value: s.deps.SupportEmail, Description: "Send us an email anytime"},
			{Title: "Phone", Value: "+91 98765 43210", Description: "Mon-Fri 9:00 AM - 6:00 PM"},
			{Title: "Location", Value: "IIM Rohtak, Haryana", Description: "Visit us on campus"},
		},
		FAQs:   faqs,
		MaxLen: contact.MaxMessageLength,
	}
}

// handleContactPage shows the form; ?sent=1 adds the success toast.
func (s *Server) handleContactPage(w http.ResponseWriter, r *http.Request) {
	view := s.contactView()
	view.Sent = r.URL.Query().Get("sent") == "1"
	s.render(w, r, http.StatusOK, "contact.html", "Contact", view)
}

// handleContact handles POST /contact.
// Invalid input re-renders the form with field errors and status 422.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.SubmitContactInput{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Subject: r.FormValue("subject"),
		Message: r.FormValue("message"),
	}

	_, err := orchestrators.ExecuteSubmitContact(r.Context(), input, orchestrators.ContactDeps{
		Store:        s.deps.Contact,
		Sender:       s.deps.Sender,
		SupportEmail: s.deps.SupportEmail,
		Metrics:      s.deps.Metrics,
		Now:          s.deps.Now,
		GenerateID:   s.deps.GenerateID,
	})
	var verrs contact.ValidationErrors
	if errors.As(err, &verrs) {
		view := s.contactView()
		view.Form = input
		view.Errors = verrs
		s.render(w, r, http.StatusUnprocessableEntity, "contact.html", "Contact", view)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
}
