/*
Package generate connects agentgraph to language models.

A Completer sends one prompt and returns text. Adapters cover the llmkit
Claude client (FromClaude, NewClaudeCLI), OpenAI and OpenAI-compatible
servers such as Ollama (NewOpenAI, NewOllama), the Anthropic Messages API
(NewAnthropic) and Gemini (NewGemini). NewCompleter picks one from a
ProviderConfig.

A Generator wraps a Completer with prompt building, retry, tracing and
metrics:

	c, err := generate.NewCompleter(ctx, generate.ProviderConfig{
	    Provider: generate.ProviderOpenAI,
	    Model:    "gpt-4o-mini",
	    APIKey:   key,
	})
	if err != nil {
	    return err
	}
	g := generate.New(c, generate.WithLogger(logger))

	res, err := g.Workflow(ctx, "Triage incoming support emails", "en")
	if err != nil {
	    return err
	}
	fmt.Println(res.Response.Confirmation)

The model's answer is untrusted. Workflow extracts the JSON object
(fenced or bare), decodes it and always passes it through
agentgraph.RepairResponse. Only transient provider failures are retried;
see the errors package for the categories.
*/
package generate
