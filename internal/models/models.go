package models

// Postgres returns every gorm model, in migration order.
func Postgres() []any {
	return []any{
		&User{},
		&Follow{},
		&Like{},
		&Comment{},
		&SavedPost{},
		&Message{},
		&MessageSeen{},
		&Notification{},
		&NotificationSeen{},
		&StoryView{},
		&Product{},
		&Review{},
		&Address{},
		&Order{},
	}
}
