// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package game

import "fmt"

// Message colors. Standard for narration, warning for rejected input.
const (
	standardColor = "Purple"
	warningColor  = "FireBrick"
)

// colorize wraps a message in the HTML markup the room layout renders
// for colored bot messages.
func colorize(color, message string) string {
	return fmt.Sprintf(`<a style="color:%s;">%s</a>`, color, message)
}

// taskTitle is the instruction shown above the game board.
const taskTitle = "Find the word."

// User-facing message texts. Kept in one place so the session code
// reads as protocol, not prose.
const (
	msgEmptyGuess  = "**You need to provide a guess!**"
	msgInvalidWord = "**Unfortunately this word is not valid. Make sure that there aren't any typos**"
	msgNotUnderstood = "Sorry, but I do not understand this command."

	msgWaitForPartner    = "Let's wait for your partner to also enter a guess."
	msgPartnerBelieves   = "Your partner thinks that you have found the right word. Enter your guess."
	msgGuessesDiffer     = "You and your partner sent a different word, please discuss and enter the same guess."
	msgRoundTimeout      = "**Your time is up! Unfortunately you get no points for this round.**"
	msgGameOver          = "The game is over! Thank you for participating!"
	msgRoomClosing       = "This room is closing. Make sure to save your token before you leave or reload this page."
	msgReadOnlyPlaceholder = "This room is read-only"
	msgTokenInstructions = "Please enter the following token into the field on the HIT webpage, and close this browser window."
)

func msgWrongLength(want int) string {
	return fmt.Sprintf("Unfortunately this word is not valid. Your guess needs to have %d letters.", want)
}

func msgDuplicateGuess(previous string) string {
	return fmt.Sprintf("**You already entered the guess: %s, let's wait for your partner to also enter a guess.**", previous)
}

func msgRoundResult(result string, points, total int) string {
	return fmt.Sprintf("**YOU %s! For this round you get %d points. Your total score is: %d**", result, points, total)
}

func msgNextImage(remaining int) string {
	return fmt.Sprintf("Ok, let's get both of you the next image. %d to go!", remaining)
}

func msgFirstImage(total int) string {
	return fmt.Sprintf("Let's start with the first of %d images", total)
}

func msgPlayerLeft(name string) string {
	return fmt.Sprintf("%s has left the game. Please wait a bit, your partner may rejoin.", name)
}

func msgPlayerJoined(name string) string {
	return fmt.Sprintf("%s has joined the game.", name)
}

func msgShareScore(partnerName string, score, rounds int, playURL string) string {
	return fmt.Sprintf(
		"Please share the following text on social media: "+
			"I played slurdle and helped science! "+
			"Together with %s, I got %d points for %d puzzle(s). "+
			"Play here: %s. #slurdle",
		partnerName, score, rounds, playURL)
}

func msgToken(token string) string {
	return fmt.Sprintf("Here is your token: %s", token)
}
