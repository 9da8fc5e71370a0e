package redact

import "regexp"

// Pattern is a labelled detection regex.
type Pattern struct {
	Label string
	Re    *regexp.Regexp
}

// Replacement pairs a pattern with its masking template. Templates use
// regexp.Expand syntax (${1}).
type Replacement struct {
	Label   string
	Pattern *regexp.Regexp
	Replace string
}

// Top-level domains are letters only. A "[A-Z|a-z]" class would also accept
// '|', which no domain contains.
var (
	reIPv4  = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	reEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	reKey   = regexp.MustCompile(`(?i)(api_key|apikey|secret|token|sk-)\S{10,}`)
	reAuth  = regexp.MustCompile(`(?i)Authorization:\s*(Bearer|Basic)\s+[A-Za-z0-9._-]+`)
)

// DetectionPatterns are run, in order, by Scan.
var DetectionPatterns = []Pattern{
	{Label: "IPv4 Address", Re: reIPv4},
	{Label: "Email Address", Re: reEmail},
	{Label: "API Key (Generic)", Re: reKey},
	{Label: "Auth Header", Re: reAuth},
}

// Masks written by RedactionRules. None of them matches its own rule again.
const (
	IPv4Mask  = "xxx.xxx.xxx.xxx"
	KeyMask   = "********************"
	SKKeyMask = "sk-" + KeyMask
	AWSMask   = "AKIA****************"
)

// RedactionRules are applied in order; each rule sees the output of the
// previous one.
var RedactionRules = []Replacement{
	{
		Label:   "IPv4 Address",
		Pattern: reIPv4,
		Replace: IPv4Mask,
	},
	{
		Label:   "Email Address",
		Pattern: regexp.MustCompile(`\b([A-Za-z0-9._%+-])[A-Za-z0-9._%+-]+@([A-Za-z0-9.-]+)\.([A-Za-z]{2,})\b`),
		Replace: "${1}***@${2}.${3}",
	},
	{
		Label:   "OpenAI-style Key",
		Pattern: regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
		Replace: SKKeyMask,
	},
	{
		Label:   "AWS Access Key",
		Pattern: regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		Replace: AWSMask,
	},
	{
		Label:   "Auth Header",
		Pattern: regexp.MustCompile(`(?i)Authorization:\s*(Bearer|Basic)\s+([A-Za-z0-9._-]+)`),
		Replace: "Authorization: ${1} " + KeyMask,
	},
}
