package tools

import "github.com/xiaot623/gogo/ollama-mcp/internal/domain"

// Prefix is the namespace shared by every tool name.
const Prefix = "ollama_"

// Tool names.
const (
	CheckHealth      = Prefix + "check_health"
	ListModels       = Prefix + "list_models"
	ShowModel        = Prefix + "show_model"
	PullModel        = Prefix + "pull_model"
	DeleteModel      = Prefix + "delete_model"
	CopyModel        = Prefix + "copy_model"
	CreateModel      = Prefix + "create_model"
	Generate         = Prefix + "generate"
	GenerateStream   = Prefix + "generate_stream"
	Chat             = Prefix + "chat"
	ChatStream       = Prefix + "chat_stream"
	Embeddings       = Prefix + "embeddings"
	CreateEmbeddings = Prefix + "create_embeddings"
	ListProcesses    = Prefix + "list_processes"
	CheckBlobs       = Prefix + "check_blobs"
	GetVersion       = Prefix + "get_version"
	UpdateModel      = Prefix + "update_model"
	GetModelfile     = Prefix + "get_modelfile"
	GetModelsInfo    = Prefix + "get_models_info"
	ValidateModel    = Prefix + "validate_model"
	GetModelSize     = Prefix + "get_model_size"
	SearchModels     = Prefix + "search_models"
	SaveContext      = Prefix + "save_context"
	LoadContext      = Prefix + "load_context"
	ClearContext     = Prefix + "clear_context"
	AppendContext    = Prefix + "append_context"
	BatchGenerate    = Prefix + "batch_generate"
	CompareModels    = Prefix + "compare_models"
)

func object(props map[string]*domain.Schema, required ...string) *domain.Schema {
	if props == nil {
		props = map[string]*domain.Schema{}
	}
	return &domain.Schema{Type: "object", Properties: props, Required: required}
}

func str(desc string) *domain.Schema {
	return &domain.Schema{Type: "string", Description: desc}
}

func boolean(desc string) *domain.Schema {
	return &domain.Schema{Type: "boolean", Description: desc}
}

func stringList(desc string) *domain.Schema {
	return &domain.Schema{Type: "array", Description: desc, Items: &domain.Schema{Type: "string"}}
}

func options() *domain.Schema {
	return &domain.Schema{Type: "object", Description: "Model options such as temperature or num_ctx"}
}

var modelName = str("Model name, e.g. llama3.2:latest")

func message(roles ...string) *domain.Schema {
	return &domain.Schema{
		Type: "object",
		Properties: map[string]*domain.Schema{
			"role":    {Type: "string", Enum: roles},
			"content": {Type: "string"},
		},
	}
}

func messages(desc string, roles ...string) *domain.Schema {
	return &domain.Schema{Type: "array", Description: desc, Items: message(roles...)}
}

func generateInput() *domain.Schema {
	return object(map[string]*domain.Schema{
		"model":    modelName,
		"prompt":   str("Input prompt"),
		"system":   str("System prompt"),
		"template": str("Prompt template"),
		"context": {
			Type:        "array",
			Description: "Context tokens returned by a previous generate call",
			Items:       &domain.Schema{Type: "integer"},
		},
		"options": options(),
	}, "model", "prompt")
}

func chatInput() *domain.Schema {
	return object(map[string]*domain.Schema{
		"model":    modelName,
		"messages": messages("Chat messages", domain.RoleSystem, domain.RoleUser, domain.RoleAssistant),
		"options":  options(),
	}, "model", "messages")
}

func modelOnly() *domain.Schema {
	return object(map[string]*domain.Schema{"model": modelName}, "model")
}

func sessionOnly() *domain.Schema {
	return object(map[string]*domain.Schema{"session_id": str("Session id")}, "session_id")
}

// Catalog returns the descriptors of every supported tool.
func Catalog() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{
			Name:        CheckHealth,
			Description: "Check whether the Ollama server is reachable and working",
			InputSchema: object(nil),
		},
		{
			Name:        ListModels,
			Description: "List all locally available Ollama models",
			InputSchema: object(nil),
		},
		{
			Name:        ShowModel,
			Description: "Show detailed information about one model",
			InputSchema: modelOnly(),
		},
		{
			Name:        PullModel,
			Description: "Download a model from the Ollama registry",
			InputSchema: object(map[string]*domain.Schema{
				"model":    modelName,
				"insecure": boolean("Allow an insecure registry connection"),
			}, "model"),
		},
		{
			Name:        DeleteModel,
			Description: "Delete a model from the local system",
			InputSchema: modelOnly(),
		},
		{
			Name:        CopyModel,
			Description: "Copy a model under a new name",
			InputSchema: object(map[string]*domain.Schema{
				"source":      str("Source model name"),
				"destination": str("Destination model name"),
			}, "source", "destination"),
		},
		{
			Name:        CreateModel,
			Description: "Create a new model from a Modelfile",
			InputSchema: object(map[string]*domain.Schema{
				"model":     modelName,
				"modelfile": str("Modelfile contents"),
			}, "model", "modelfile"),
		},
		{
			Name:        Generate,
			Description: "Generate text for a prompt with an Ollama model",
			InputSchema: generateInput(),
		},
		{
			Name:        GenerateStream,
			Description: "Generate text in streaming mode and return every chunk in order",
			InputSchema: generateInput(),
		},
		{
			Name:        Chat,
			Description: "Run a chat conversation with a model",
			InputSchema: chatInput(),
		},
		{
			Name:        ChatStream,
			Description: "Run a chat in streaming mode and return every chunk in order",
			InputSchema: chatInput(),
		},
		{
			Name:        Embeddings,
			Description: "Compute the embedding vector of a text",
			InputSchema: object(map[string]*domain.Schema{
				"model":   modelName,
				"prompt":  str("Text to embed"),
				"options": options(),
			}, "model", "prompt"),
		},
		{
			Name:        CreateEmbeddings,
			Description: "Compute embeddings for several texts",
			InputSchema: object(map[string]*domain.Schema{
				"model":   modelName,
				"prompts": stringList("Texts to embed"),
				"options": options(),
			}, "model", "prompts"),
		},
		{
			Name:        ListProcesses,
			Description: "List the models currently loaded for inference",
			InputSchema: object(nil),
		},
		{
			Name:        CheckBlobs,
			Description: "Check whether a blob exists on the server",
			InputSchema: object(map[string]*domain.Schema{
				"digest": str("Blob digest, e.g. sha256:..."),
			}, "digest"),
		},
		{
			Name:        GetVersion,
			Description: "Get the Ollama server version",
			InputSchema: object(nil),
		},
		{
			Name:        UpdateModel,
			Description: "Update an existing model with a new Modelfile",
			InputSchema: object(map[string]*domain.Schema{
				"model":     modelName,
				"modelfile": str("New Modelfile definition"),
			}, "model", "modelfile"),
		},
		{
			Name:        GetModelfile,
			Description: "Get the Modelfile of a model",
			InputSchema: modelOnly(),
		},
		{
			Name:        GetModelsInfo,
			Description: "Get detailed information about all models",
			InputSchema: object(nil),
		},
		{
			Name:        ValidateModel,
			Description: "Check whether a model is installed and usable",
			InputSchema: modelOnly(),
		},
		{
			Name:        GetModelSize,
			Description: "Get the storage size of a model",
			InputSchema: modelOnly(),
		},
		{
			Name:        SearchModels,
			Description: "Search local models by name",
			InputSchema: object(map[string]*domain.Schema{
				"query":  str("Case-insensitive name substring"),
				"remote": boolean("Also search the remote registry (not supported, ignored)"),
			}, "query"),
		},
		{
			Name:        SaveContext,
			Description: "Save chat context for later use",
			InputSchema: object(map[string]*domain.Schema{
				"session_id": str("Session id"),
				"messages":   messages("Chat messages"),
			}, "session_id", "messages"),
		},
		{
			Name:        LoadContext,
			Description: "Load saved chat context",
			InputSchema: sessionOnly(),
		},
		{
			Name:        ClearContext,
			Description: "Delete saved chat context",
			InputSchema: sessionOnly(),
		},
		{
			Name:        AppendContext,
			Description: "Append one message to saved chat context",
			InputSchema: object(map[string]*domain.Schema{
				"session_id": str("Session id"),
				"message":    message(),
			}, "session_id", "message"),
		},
		{
			Name:        BatchGenerate,
			Description: "Generate text for several prompts",
			InputSchema: object(map[string]*domain.Schema{
				"model":   modelName,
				"prompts": stringList("Prompts"),
				"options": options(),
			}, "model", "prompts"),
		},
		{
			Name:        CompareModels,
			Description: "Compare the output of several models for the same prompt",
			InputSchema: object(map[string]*domain.Schema{
				"models":  stringList("At least two model names"),
				"prompt":  str("Prompt to compare"),
				"options": options(),
			}, "models", "prompt"),
		},
	}
}
