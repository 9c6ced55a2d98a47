package email

// PreviewData contains sample template data for local preview/testing.
//
// It maps template name -> sample notification.
var PreviewData = map[Template]ContactNotification{
	TemplateContact: {
		BusinessName: "Triangle Tax & Advisory",
		To:           "support@triangletaxadvisory.com",
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		Phone:        "(919) 555-0142",
		Message:      "Hi,\nI received a CP2000 notice and would like to schedule a consultation.\n\nThanks!",
	},
}
