package controllers

import (
	"errors"
	"net/http"

	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/services"
)

// PageController serves the about and contact pages
type PageController struct {
	*Renderer
	feedbackService *services.FeedbackService
}

// NewPageController creates a new PageController
func NewPageController(rd *Renderer, feedbackService *services.FeedbackService) *PageController {
	return &PageController{Renderer: rd, feedbackService: feedbackService}
}

// About displays the about page
func (pc *PageController) About(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, "about", http.StatusOK, viewData{})
}

// Contact displays the empty contact form
func (pc *PageController) Contact(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, "contact", http.StatusOK, viewData{Label: msgContactLabel, Form: models.ContactForm{}})
}

// SendFeedback relays the contact form by email
func (pc *PageController) SendFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := models.ContactForm{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Message: r.PostFormValue("message"),
	}

	err := pc.feedbackService.Submit(r.Context(), form)
	if fields, ok := fieldErrors(err); ok {
		pc.render(w, r, "contact", http.StatusUnprocessableEntity, viewData{Label: msgContactLabel, Form: form, Errors: fields})
		return
	}
	if errors.Is(err, services.ErrFeedbackNotDelivered) {
		pc.log.Error().Err(err).Msg("Feedback relay failed")
		pc.render(w, r, "contact", http.StatusBadGateway, viewData{Label: msgContactLabel, Form: form, Message: msgFeedbackFailed})
		return
	}
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	pc.render(w, r, "contact", http.StatusOK, viewData{Label: msgFeedbackSent, Form: models.ContactForm{}})
}
