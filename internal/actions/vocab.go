package actions

import (
	"regexp"

	"storsim/internal/core"
)

// Call-to-action vocabulary. Order matters: negated forms (unfollow,
// unblock, unmute) must match before their positive counterparts, and
// reply/boost/like before the generic posting verbs.
var kindVocab = []struct {
	kind core.ActionKind
	re   *regexp.Regexp
}{
	{core.ActionUnfollow, regexp.MustCompile(`(?i)\bunfollow(s|ed|ing)?\b`)},
	{core.ActionUnblock, regexp.MustCompile(`(?i)\bunblock(s|ed|ing)?\b`)},
	{core.ActionUnmute, regexp.MustCompile(`(?i)\bunmute(s|d|ing)?\b`)},
	{core.ActionUpdateBio, regexp.MustCompile(`(?i)\b(update|change|edit)(s|d|ed|ing)?\s+(their\s+|my\s+|her\s+|his\s+)?(bio|profile)\b`)},
	{core.ActionReply, regexp.MustCompile(`(?i)\b(repl(y|ies|ied|ying)|respond(s|ed|ing)?|answer(s|ed|ing)?)\b`)},
	{core.ActionBoost, regexp.MustCompile(`(?i)\b(boost(s|ed|ing)?|reblog(s|ged|ging)?|share(s|d|ing)?)\b`)},
	{core.ActionLike, regexp.MustCompile(`(?i)\b(like(s|d)?|favou?rite(s|d)?|fav(s|ed)?)\b`)},
	{core.ActionFollow, regexp.MustCompile(`(?i)\bfollow(s|ed|ing)?\b`)},
	{core.ActionBlock, regexp.MustCompile(`(?i)\bblock(s|ed|ing)?\b`)},
	{core.ActionMute, regexp.MustCompile(`(?i)\bmute(s|d|ing)?\b`)},
	{core.ActionPost, regexp.MustCompile(`(?i)\b(post(s|ed|ing)?|toot(s|ed|ing)?|publish(es|ed|ing)?|write(s)?|wrote)\b`)},
}

var (
	// "toot 42", "post #42", "status id: 42", bare "#42"
	tootIDRe = regexp.MustCompile(`(?i)(?:toot|post|status)(?:\s+id)?\s*[:#]?\s*(\d+)|#(\d+)`)

	// "@alice"
	mentionRe = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

	// Straight or curly double quotes, single-line body.
	quotedRe = regexp.MustCompile(`["\x{201c}]([^"\x{201c}\x{201d}]+)["\x{201d}]`)

	visibilityRe = regexp.MustCompile(`(?i)\b(public|unlisted|private|direct|followers?[- ]only)\b`)

	jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)
)

func matchKind(text string) (core.ActionKind, bool) {
	for _, entry := range kindVocab {
		if entry.re.MatchString(text) {
			return entry.kind, true
		}
	}
	return "", false
}
