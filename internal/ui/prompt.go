package ui

import (
	"github.com/AlecAivazis/survey/v2"
)

// Select displays a selection prompt
func Select(message string, options []string) (string, error) {
	var result string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// Input displays a text input prompt
func Input(message, defaultValue, help string) (string, error) {
	var result string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// Password displays a password input prompt
func Password(message, help string) (string, error) {
	var result string
	prompt := &survey.Password{
		Message: message,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// Confirm displays a yes/no confirmation prompt
func Confirm(message string, defaultValue bool) (bool, error) {
	var result bool
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}
