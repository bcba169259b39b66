package workspace

// Notification is the snackbar the shell shows after a write.
type Notification struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	LowContrast bool   `json:"low_contrast"`
}

func savedNotification(created bool) Notification {
	if created {
		return Notification{Kind: "success", Title: "Record Saved", Subtitle: "A new encounter was created", LowContrast: true}
	}
	return Notification{Kind: "success", Title: "Record Updated", Subtitle: "The patient encounter was updated", LowContrast: true}
}

func saveFailedNotification(err error) Notification {
	return Notification{Kind: "error", Title: "Error saving encounter", Subtitle: err.Error()}
}

func deletedNotification() Notification {
	return Notification{Kind: "success", Title: "Encounter deleted successfully", LowContrast: true}
}

func deleteFailedNotification(err error) Notification {
	return Notification{Kind: "error", Title: "Error deleting encounter", Subtitle: err.Error()}
}
