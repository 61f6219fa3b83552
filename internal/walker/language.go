package walker

import (
	"path/filepath"
	"strings"
)

// extensionToLanguage maps file extensions to language names, biased toward
// what actually appears in JVM microservice repositories.
var extensionToLanguage = map[string]string{
	".java":       "Java",
	".kt":         "Kotlin",
	".kts":        "Kotlin",
	".groovy":     "Groovy",
	".go":         "Go",
	".py":         "Python",
	".js":         "JavaScript",
	".mjs":        "JavaScript",
	".ts":         "TypeScript",
	".tsx":        "TypeScript",
	".sql":        "SQL",
	".sh":         "Shell",
	".bash":       "Shell",
	".yaml":       "YAML",
	".yml":        "YAML",
	".json":       "JSON",
	".avsc":       "Avro",
	".avdl":       "Avro",
	".proto":      "Protobuf",
	".xml":        "XML",
	".properties": "Properties",
	".md":         "Markdown",
	".mdx":        "MDX",
	".html":       "HTML",
	".css":        "CSS",
}

// filenameToLanguage maps specific filenames to language names.
var filenameToLanguage = map[string]string{
	"Dockerfile":          "Dockerfile",
	"Makefile":            "Makefile",
	"Jenkinsfile":         "Groovy",
	"pom.xml":             "XML",
	"docker-compose.yml":  "YAML",
	"docker-compose.yaml": "YAML",
	".gitignore":          "Git",
	".dockerignore":       "Docker",
}

// DetectLanguage returns the source language for a given filename based on
// its extension or exact filename. Returns "unknown" for unrecognized
// files.
func DetectLanguage(filename string) string {
	base := filepath.Base(filename)

	if lang, ok := filenameToLanguage[base]; ok {
		return lang
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return "unknown"
	}

	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}

	return "unknown"
}
