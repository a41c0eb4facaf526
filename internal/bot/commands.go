package bot

// Command constants for Telegram bot commands.
const (
	CommandStart          = "/start"
	CommandWeather        = "/weather"
	CommandForecast       = "/forecast"
	CommandChangeCity     = "/change_city"
	CommandChangeLanguage = "/change_language"
	CommandHelp           = "/help"
)

// Administrator commands. The router registers them for everyone; the
// handlers silently ignore non-admin senders.
const (
	CommandStats     = "/stats"
	CommandBan       = "/ban"
	CommandUnban     = "/unban"
	CommandBroadcast = "/broadcast"
)
