package entity

type Player struct {
	ID     string `json:"id"`
	UserID string `json:"user_id,omitempty"`
	Mark   string `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
