package ports

// Console shows session output on the main terminal.
type Console interface {
	DailyMessage(body string)
	UserList(users []string)
	RecipientMissing(peer string)
	UserLoggedOff(peer string)
	Help(text string)
	InvalidInput(reason string)
	Notice(text string)
}
