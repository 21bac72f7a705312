// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package message resolves the mail body sent to guardians: an embedded
// default, overridable by a message.txt in the config directory or an
// explicit flag.
package message

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default is the standard message to guardians. {PRENOM} expands to the
// student's first name when present.
const Default = `Bonjour,

Veuillez trouver en pièces jointes les restitutions individuelles des
évaluations nationales de votre enfant, en français et en mathématiques.

Ces documents vous sont transmis pour information. Ils pourront servir de
support d'échange lors des rencontres parents-professeurs.

Restant à votre disposition pour toute question,

Cordialement,
Le professeur principal`

// ConfigFileName is the per-user override looked up in the config
// directory.
const ConfigFileName = "message.txt"

// Resolve picks the mail body. Precedence: explicit text flag, explicit
// file flag, message.txt under configDir, embedded default. Text and file
// flags are mutually exclusive. Line endings are normalized to LF and
// trailing blank lines trimmed.
func Resolve(text, file, configDir string) (string, error) {
	if text != "" && file != "" {
		return "", fmt.Errorf("message text and message file are mutually exclusive")
	}
	if text != "" {
		return normalize(text), nil
	}
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading message file: %w", err)
		}
		return normalize(string(raw)), nil
	}
	if configDir != "" {
		raw, err := os.ReadFile(filepath.Join(configDir, ConfigFileName))
		if err == nil {
			return normalize(string(raw)), nil
		}
	}
	return Default, nil
}

// Expand substitutes the student placeholders in a message body.
func Expand(body, firstName, lastName string) string {
	body = strings.ReplaceAll(body, "{PRENOM}", firstName)
	body = strings.ReplaceAll(body, "{NOM}", lastName)
	return body
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimRight(s, "\n")
}
