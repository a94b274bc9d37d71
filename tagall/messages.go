package tagall

// User-facing texts. Everything is sent with HTML parse mode.
const (
	DefaultAnnouncement = "Тегаю всіх"

	msgAbout = "Це бот для тегування усіх учасників групи.\n" +
		"Команди: /tag_all, /tag_all_silent, /set_tag_message."
	msgStart = "Привіт! Використайте /set_tag_message у групі, " +
		"і я попрошу вас надіслати сюди повідомлення для тегування."
	msgGroupOnly        = "Цю команду можна використовувати тільки в групі!"
	msgMembersFailed    = "Не вдалося отримати список учасників."
	msgNoActiveRequest  = "Немає активного запиту на оновлення повідомлення."
	msgContentUpdated   = "Повідомлення для тегування оновлено."
	msgUpdateFailed     = "Помилка при оновленні повідомлення. Спробуйте ще раз."
	msgGenericFailure   = "Сталася помилка. Спробуйте пізніше."
	msgStartBotFirst    = "Будь ласка, почніть діалог з ботом, надіславши команду /start у особисті повідомлення."
	msgPromptSent       = "Надіслав вам особисте повідомлення."
	msgPrivatePrompt    = "Напишіть повідомлення, скиньте стікер, гіфку, відео, фото, аудіо або голосове повідомлення для тегування в групі."
	msgUnsupportedInput = "Надішліть текст, стікер, гіфку, відео, фото, аудіо, документ або голосове повідомлення."
)

// Command is an entry of the bot command menu
type Command struct {
	Name        string
	Description string
}

// Commands returns the command menu of the bot
func Commands() []Command {
	return []Command{
		{Name: "tag_all", Description: "Tag all group members"},
		{Name: "tag_all_without_msg", Description: "Tag all group members"},
		{Name: "tag_all_silent", Description: "Tag all members without the announcement"},
		{Name: "set_tag_message", Description: "Update the tagging message"},
		{Name: "about", Description: "About the bot"},
	}
}
