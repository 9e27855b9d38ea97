package install

// systemDirs are the system-wide install locations on Linux.
var systemDirs = map[Browser]string{
	Chrome:  "/etc/opt/chrome/native-messaging-hosts",
	Firefox: "/usr/lib/mozilla/native-messaging-hosts",
}

// userSubDirs are the user-specific install locations, relative to a user's
// home directory on Linux.
var userSubDirs = map[Browser]string{
	Chrome:  ".config/google-chrome/NativeMessagingHosts",
	Firefox: ".mozilla/native-messaging-hosts",
}
