package utils

import "regexp"

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]{3,19}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
)

func CheckUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

func CheckEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func CheckPassword(password string) bool {
	return len(password) >= 8
}
