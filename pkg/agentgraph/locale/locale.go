// Package locale holds the user-visible strings emitted by agentgraph:
// condition branch labels, default port labels, Markdown headings and
// the messages shown for rejected imports.
//
// Bundles are looked up by BCP-47 tag. Unknown or malformed tags fall back
// to English.
package locale

import (
	"sync"

	"golang.org/x/text/language"
)

// Bundle is the set of localized strings for one language.
type Bundle struct {
	// Tag is the BCP-47 tag the bundle serves (e.g. "en", "zh").
	Tag string
	// Language is the language name used inside generated prompts.
	Language string

	True  string
	False string

	GenericInput  string
	GenericOutput string
	ScriptInput   string
	ScriptOutput  string
	ToolInput     string
	ToolOutput    string
	SkillInput    string
	SkillOutput   string

	// None is the placeholder for empty port lists.
	None string

	NodesHeading  string
	EdgesHeading  string
	Description   string
	Inputs        string
	Outputs       string
	InvalidImport string
}

// English is the default bundle.
var English = Bundle{
	Tag:           "en",
	Language:      "English",
	True:          "True",
	False:         "False",
	GenericInput:  "Input",
	GenericOutput: "Output",
	ScriptInput:   "Variable Context",
	ScriptOutput:  "Execution Result",
	ToolInput:     "Tool Params",
	ToolOutput:    "Tool Return",
	SkillInput:    "Skill Dependency",
	SkillOutput:   "Skill Output",
	None:          "None",
	NodesHeading:  "Nodes",
	EdgesHeading:  "Edges",
	Description:   "Description",
	Inputs:        "Inputs",
	Outputs:       "Outputs",
	InvalidImport: "Invalid workflow file: a workflow must contain \"nodes\" and \"edges\" arrays.",
}

// Chinese is the Simplified Chinese bundle.
var Chinese = Bundle{
	Tag:           "zh",
	Language:      "简体中文",
	True:          "是",
	False:         "否",
	GenericInput:  "输入",
	GenericOutput: "输出",
	ScriptInput:   "变量上下文",
	ScriptOutput:  "执行结果",
	ToolInput:     "工具参数",
	ToolOutput:    "工具返回",
	SkillInput:    "技能依赖",
	SkillOutput:   "技能输出",
	None:          "无",
	NodesHeading:  "节点",
	EdgesHeading:  "连线",
	Description:   "描述",
	Inputs:        "输入",
	Outputs:       "输出",
	InvalidImport: "无效的工作流文件：工作流必须包含 \"nodes\" 和 \"edges\" 数组。",
}

var (
	mu      sync.RWMutex
	tags    = []language.Tag{language.English, language.Chinese}
	bundles = []Bundle{English, Chinese}
	matcher = language.NewMatcher(tags)
)

// Register adds or replaces the bundle for b.Tag.
// Returns an error if the tag cannot be parsed.
func Register(b Bundle) error {
	tag, err := language.Parse(b.Tag)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	for i, t := range tags {
		if t == tag {
			bundles[i] = b
			return nil
		}
	}
	tags = append(tags, tag)
	bundles = append(bundles, b)
	matcher = language.NewMatcher(tags)
	return nil
}

// For returns the bundle best matching tag.
// An empty or unparseable tag yields English.
func For(tag string) Bundle {
	if tag == "" {
		return English
	}
	desired, _, err := language.ParseAcceptLanguage(tag)
	if err != nil || len(desired) == 0 {
		return English
	}

	mu.RLock()
	defer mu.RUnlock()

	_, idx, conf := matcher.Match(desired...)
	if conf == language.No {
		return English
	}
	return bundles[idx]
}

// Tags returns the registered bundle tags in registration order.
func Tags() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, len(bundles))
	for i, b := range bundles {
		out[i] = b.Tag
	}
	return out
}
