package detect

// Issue codes produced by the heuristic detector. They embed the same
// guideline-and-criterion token HTML_CodeSniffer-style codes carry, so the
// registry resolves both origins identically.
const (
	CodeInteractiveName = "A11yScan.Principle4.Guideline4_1.4_1_2.InteractiveName"
	CodePointerOnly     = "A11yScan.Principle2.Guideline2_1.2_1_1.PointerOnly"
	CodeNotFocusable    = "A11yScan.Principle2.Guideline2_1.2_1_1.NotFocusable"
	CodeImageAltMissing = "A11yScan.Principle1.Guideline1_1.1_1_1.ImgAltMissing"
	CodeImageAltEmpty   = "A11yScan.Principle1.Guideline1_1.1_1_1.ImgAltEmpty"
	CodeFormFieldLabel  = "A11yScan.Principle3.Guideline3_3.3_3_2.FormFieldLabel"
	CodeLinkNoName      = "A11yScan.Principle2.Guideline2_4.2_4_4.EmptyLink"
	CodeLinkGenericText = "A11yScan.Principle2.Guideline2_4.2_4_4.GenericLinkText"
	CodeSkipLinkMissing = "A11yScan.Principle2.Guideline2_4.2_4_1.SkipLinkMissing"
	CodeSkipLinkBroken  = "A11yScan.Principle2.Guideline2_4.2_4_1.SkipLinkBroken"
	CodeSkipLinkOrder   = "A11yScan.Principle2.Guideline2_4.2_4_1.SkipLinkOrder"
	CodeContextChange   = "A11yScan.Principle3.Guideline3_2.3_2_2.HandlerNavigation"
	CodeMultipleWays    = "A11yScan.Principle2.Guideline2_4.2_4_5.MultipleWays"
)

// genericLinkPhrases is the boilerplate link-text set, matched
// case-insensitively after punctuation stripping.
var genericLinkPhrases = map[string]struct{}{
	"click here": {},
	"click":      {},
	"here":       {},
	"read more":  {},
	"more":       {},
	"learn more": {},
	"more info":  {},
	"details":    {},
	"this link":  {},
	"link":       {},
	"go here":    {},
}
