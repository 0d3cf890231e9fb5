package orgmode

import (
	"bufio"
	"io"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/tasks"
)

var (
	headingRegex  = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s*(?:\[#[A-Z]\])?\s*(.*?)(?:\s+(:(?:\w+:)+))?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})[^>]*>`)
	subjectRegex  = regexp.MustCompile(`(?i)^:SUBJECT:\s+(.+)$`)
)

// entry is a heading being read, waiting for its :END:.
type entry struct {
	input tasks.Input
	tags  []string
}

func parseFile(filePath string) ([]tasks.Input, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, filePath)
}

// ParseFiles parses multiple Org-mode files into task drafts.
func ParseFiles(filePaths []string) ([]tasks.Input, error) {
	var all []tasks.Input
	for _, filePath := range filePaths {
		inputs, err := parseFile(filePath)
		if err != nil {
			return nil, err
		}
		all = append(all, inputs...)
	}
	return all, nil
}

// Parse reads TODO/DONE headings from r. An entry is emitted at the :END: of
// its property drawer once it has a title, a :SUBJECT: and a DEADLINE.
func Parse(r io.Reader, source string) ([]tasks.Input, error) {
	scanner := bufio.NewScanner(r)
	var inputs []tasks.Input
	var current *entry

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if matches := headingRegex.FindStringSubmatch(line); matches != nil {
			current = &entry{input: tasks.Input{
				Title:     strings.TrimSpace(matches[2]),
				Completed: matches[1] == "DONE",
			}}
			if matches[3] != "" {
				current.tags = strings.Split(strings.Trim(matches[3], ":"), ":")
			}
			continue
		}
		if strings.HasPrefix(line, "*") {
			// Any other heading closes the current entry.
			current = nil
			continue
		}
		if current == nil {
			continue
		}

		if matches := deadlineRegex.FindStringSubmatch(line); matches != nil {
			due, err := model.ParseDate(matches[1])
			if err != nil {
				log.Printf("Warning: %s: bad deadline %q: %v", source, matches[1], err)
			} else {
				current.input.DueDate = due
			}
		}
		if matches := subjectRegex.FindStringSubmatch(line); matches != nil {
			current.input.Subject = strings.TrimSpace(matches[1])
		}

		if strings.HasPrefix(line, ":END:") {
			if in := current.input; in.Title != "" && in.Subject != "" && !in.DueDate.IsZero() {
				in.Type = typeFromTags(current.tags)
				inputs = append(inputs, in)
			}
			current = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// typeFromTags returns the first tag naming a task type, or "other".
func typeFromTags(tags []string) model.TaskType {
	for _, tag := range tags {
		if t := model.ParseTaskType(tag); t != model.Other {
			return t
		}
	}
	return model.Other
}
