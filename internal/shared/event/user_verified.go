package event

const UserVerifiedDestination string = "user_verified"
const UserVerifiedConsumerNotification string = "user_verified_notification"

type UserVerifiedMessage struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
