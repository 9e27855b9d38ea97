package install

// systemDirs are the system-wide install locations on macOS.
var systemDirs = map[Browser]string{
	Chrome:  "/Library/Google/Chrome/NativeMessagingHosts",
	Firefox: "/Library/Application Support/Mozilla/NativeMessagingHosts",
}

// userSubDirs are the user-specific install locations, relative to a user's
// home directory on macOS.
var userSubDirs = map[Browser]string{
	Chrome:  "Library/Application Support/Google/Chrome/NativeMessagingHosts",
	Firefox: "Library/Application Support/Mozilla/NativeMessagingHosts",
}
