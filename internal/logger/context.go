package logger

// Component-specific logger functions

// HTTP returns a logger for the REST server
func HTTP() Logger {
	return WithField("component", "http")
}

// DB returns a logger for database queries
func DB() Logger {
	return WithField("component", "db")
}

// Auth returns a logger for authentication events
func Auth() Logger {
	return WithField("component", "auth")
}

// Migration returns a logger for schema migrations
func Migration() Logger {
	return WithField("component", "migration")
}

// Breeds returns a logger for the breed registry client
func Breeds() Logger {
	return WithField("component", "breeds")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}
