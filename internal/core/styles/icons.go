package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconCheckboxOn  = "[x]"
	IconCheckboxOff = "[ ]"
	IconCursor      = ">"
	IconEllipsis    = "..."
	IconMoney       = "$"
	IconWarning     = "!"

	IconNotifyInfo    = "i"
	IconNotifyWarning = "!"
	IconNotifyError   = "x"
)
