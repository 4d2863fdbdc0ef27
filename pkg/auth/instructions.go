package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowAPICredentialsGuide explains how to obtain an API id and hash
func ShowAPICredentialsGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "TELEGRAM API CREDENTIALS")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This tool signs in as your own Telegram account, which needs an")
	fmt.Fprintln(w, "API id and API hash for a personal application.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 1: Open https://my.telegram.org and log in with your phone number")
	fmt.Fprintln(w, "STEP 2: Choose 'API development tools'")
	fmt.Fprintln(w, "STEP 3: Create an application (any title and short name will do)")
	fmt.Fprintln(w, "STEP 4: Copy the two values shown:")
	fmt.Fprintln(w, "   api_id    a number, for example 1234567")
	fmt.Fprintln(w, "   api_hash  32 hexadecimal characters")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SECURITY WARNING:")
	fmt.Fprintln(w, "   The API hash and the session file created on first sign-in give")
	fmt.Fprintln(w, "   full access to your account. Never share them.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
}

// ShowQuickGuide shows a condensed version for experienced users
func ShowQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "Get api_id and api_hash at https://my.telegram.org > API development tools")
	fmt.Fprintln(w, "Run 'tgmedia auth login' for step by step instructions")
}
