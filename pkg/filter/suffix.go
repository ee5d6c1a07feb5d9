package filter

import (
	"io/fs"
	"strings"

	"github.com/rivergate/usbvault/pkg/config"
)

// presetExtensions maps each built-in preset to its extension set (without
// the leading dot, lowercase). SuffixPresetAll is the union of the rest,
// computed in init.
var presetExtensions = map[config.SuffixPreset]map[string]bool{
	config.SuffixPresetDocuments: toSet("pdf", "doc", "docx", "odt", "txt", "rtf", "md"),
	config.SuffixPresetImages:    toSet("jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp", "heic"),
	config.SuffixPresetVideo:     toSet("mp4", "mov", "avi", "mkv", "webm", "m4v", "wmv"),
	config.SuffixPresetAudio:     toSet("mp3", "wav", "flac", "aac", "ogg", "m4a", "wma"),
	config.SuffixPresetArchives:  toSet("zip", "tar", "gz", "7z", "rar", "bz2", "xz"),
}

func init() {
	all := make(map[string]bool)
	for _, set := range presetExtensions {
		for ext := range set {
			all[ext] = true
		}
	}
	presetExtensions[config.SuffixPresetAll] = all
}

func toSet(exts ...string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[ext] = true
	}
	return set
}

// extension returns the lowercased substring of name after its last '.',
// or "" if name has no extension (the dot is absent, leading, or
// trailing).
func extension(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[dot+1:])
}

// effectiveSet resolves the extension set the suffix filter should test
// against: the configured preset's set when a non-empty preset is
// selected, otherwise the mode's explicitly configured list.
func effectiveSet(mode config.SuffixFilterMode) map[string]bool {
	preset := config.SuffixFilterPreset.Get()
	if preset != config.SuffixPresetNone {
		if set, ok := presetExtensions[preset]; ok {
			return set
		}
		// Unknown preset value: fall back to the configured list.
	}

	var list []string
	if mode == config.SuffixFilterModeBlacklist {
		list = config.SuffixFilterBlacklist.Get()
	} else {
		list = config.SuffixFilterWhitelist.Get()
	}
	set := make(map[string]bool, len(list))
	for _, ext := range list {
		set[strings.ToLower(ext)] = true
	}
	return set
}

// Suffix is the extension-based filter: NONE mode passes everything,
// WHITELIST mode admits only extensions in the effective set, BLACKLIST
// mode rejects extensions in the effective set. Files with no extension
// are routed by FileFilterAllowNoExt rather than tested against the set.
var Suffix Filter = FilterFunc(suffixTest)

func suffixTest(path string, info fs.FileInfo) bool {
	mode := config.SuffixFilterModeEntry.Get()
	if mode == config.SuffixFilterModeNone {
		return true
	}

	ext := extension(info.Name())
	if ext == "" {
		return config.FileFilterAllowNoExt.Get()
	}

	set := effectiveSet(mode)
	member := set[ext]
	if mode == config.SuffixFilterModeBlacklist {
		return !member
	}
	return member
}
