// Package argument is used to read command line arguments of the application.
package argument

import (
	"fmt"
	"os"
	"strings"
)

// List of the application flags
const (
	Debug        = "debug"         // Print the debug logs
	NoController = "no-controller" // Don't start the command controller, serve only http
	NoGateway    = "no-gateway"    // Don't start the http gateway, serve only the command controller
)

// GetEnvPaths any command line data that comes after the files are .env file paths
// Any argument for application without '--' prefix is considered to be path to the
// environment file.
func GetEnvPaths() []string {
	args := os.Args[1:]
	if len(args) == 0 {
		return []string{}
	}

	paths := make([]string, 0)

	for _, arg := range args {
		if len(arg) < 4 {
			continue
		}

		if !strings.HasSuffix(arg, ".env") {
			continue
		}

		if strings.HasPrefix(arg, "--") {
			continue
		}
		paths = append(paths, arg)
	}

	return paths
}

// GetArguments Load arguments, not the environment variable paths.
// Arguments starts with '--'
func GetArguments() []string {
	args := os.Args[1:]
	if len(args) == 0 {
		return []string{}
	}

	parameters := make([]string, 0)

	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			parameters = append(parameters, arg[2:])
		}
	}

	return parameters
}

// Exist is same as Has, except it loads the arguments automatically.
func Exist(argument string) bool {
	return Has(GetArguments(), argument)
}

// ExtractValue the value of the argument if it has.
// The argument value comes after "=".
//
// If the argument doesn't exist, then returns an error.
func ExtractValue(arguments []string, required string) (string, error) {
	found := ""
	for _, argument := range arguments {
		// doesn't have a value
		if argument == required {
			continue
		}

		if strings.HasPrefix(argument, required+"=") {
			found = argument
			break
		}
	}

	value, err := GetValue(found)
	if err != nil {
		return "", fmt.Errorf("GetValue for %s argument: %w", required, err)
	}

	return value, nil
}

// GetValue Extracts the value of the argument.
// Argument comes after '='
func GetValue(argument string) (string, error) {
	parts := strings.Split(argument, "=")
	if len(parts) != 2 {
		return "", fmt.Errorf("strings.split(`%s`) should has two parts", argument)
	}

	return parts[1], nil
}

// Has the given argument or not.
func Has(arguments []string, required string) bool {
	for _, argument := range arguments {
		if argument == required {
			return true
		}

		if strings.HasPrefix(argument, required+"=") {
			return true
		}
	}

	return false
}
