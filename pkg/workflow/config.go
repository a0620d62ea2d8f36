package workflow

// Per-kind configuration records. Field shapes follow the editor wire
// format (camelCase JSON). String-valued fields may embed {{...}} reference
// expressions; resolution happens at preview time, never at parse time.

// CronTriggerConfig configures a schedule-based trigger.
type CronTriggerConfig struct {
	Schedule string `json:"schedule"`
	Timezone string `json:"timezone,omitempty"`
}

func (*CronTriggerConfig) kind() Kind { return KindCronTrigger }

// WebhookAuth configures inbound authentication on an HTTP trigger.
type WebhookAuth struct {
	Type                string   `json:"type"`
	AuthorizedAddresses []string `json:"authorizedAddresses,omitempty"`
}

// HTTPTriggerConfig configures a webhook trigger.
type HTTPTriggerConfig struct {
	HTTPMethod      string            `json:"httpMethod"`
	Path            string            `json:"path,omitempty"`
	Authentication  WebhookAuth       `json:"authentication"`
	ResponseMode    string            `json:"responseMode"`
	ResponseCode    int               `json:"responseCode,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
	AllowedOrigins  []string          `json:"allowedOrigins,omitempty"`
}

func (*HTTPTriggerConfig) kind() Kind { return KindHTTPTrigger }

// TopicFilters narrows an EVM log trigger to specific indexed topic values.
type TopicFilters struct {
	Topic1 []string `json:"topic1,omitempty"`
	Topic2 []string `json:"topic2,omitempty"`
	Topic3 []string `json:"topic3,omitempty"`
}

// EVMLogTriggerConfig configures a contract event trigger.
type EVMLogTriggerConfig struct {
	ChainSelectorName string        `json:"chainSelectorName"`
	ContractAddresses []string      `json:"contractAddresses"`
	EventSignature    string        `json:"eventSignature"`
	EventABI          ABIEvent      `json:"eventAbi"`
	TopicFilters      *TopicFilters `json:"topicFilters,omitempty"`
	BlockConfirmation string        `json:"blockConfirmation,omitempty"`
}

func (*EVMLogTriggerConfig) kind() Kind { return KindEVMLogTrigger }

// HTTPAuthConfig configures outbound authentication for an HTTP request
// node. TokenSecret is a logical secret name, never a literal value.
type HTTPAuthConfig struct {
	Type        string `json:"type"`
	TokenSecret string `json:"tokenSecret,omitempty"`
}

// HTTPBodyConfig declares the request body and its content type
// discriminant (json, form, raw).
type HTTPBodyConfig struct {
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

// HTTPRequestConfig configures an outbound HTTP request node.
type HTTPRequestConfig struct {
	Method              string            `json:"method"`
	URL                 string            `json:"url"`
	Authentication      *HTTPAuthConfig   `json:"authentication,omitempty"`
	Headers             map[string]string `json:"headers,omitempty"`
	QueryParameters     map[string]string `json:"queryParameters,omitempty"`
	Body                *HTTPBodyConfig   `json:"body,omitempty"`
	CacheMaxAge         int               `json:"cacheMaxAge,omitempty"`
	Timeout             int               `json:"timeout,omitempty"`
	ExpectedStatusCodes []int             `json:"expectedStatusCodes,omitempty"`
	ResponseFormat      string            `json:"responseFormat,omitempty"`
	FollowRedirects     *bool             `json:"followRedirects,omitempty"`
	IgnoreSSL           *bool             `json:"ignoreSsl,omitempty"`
}

func (*HTTPRequestConfig) kind() Kind { return KindHTTPRequest }

// EVMReadConfig configures a read-only contract call.
type EVMReadConfig struct {
	ChainSelectorName string      `json:"chainSelectorName"`
	ContractAddress   string      `json:"contractAddress"`
	ABI               ABIFunction `json:"abi"`
	FunctionName      string      `json:"functionName"`
	Args              []EVMArgDef `json:"args"`
	FromAddress       string      `json:"fromAddress,omitempty"`
	BlockNumber       string      `json:"blockNumber,omitempty"`
}

func (*EVMReadConfig) kind() Kind { return KindEVMRead }

// EVMWriteConfig configures a state-changing contract call. Preview only
// ever simulates it; nothing is broadcast.
type EVMWriteConfig struct {
	ChainSelectorName string         `json:"chainSelectorName"`
	ReceiverAddress   string         `json:"receiverAddress"`
	GasLimit          string         `json:"gasLimit"`
	ABIParams         []ABIParameter `json:"abiParams"`
	DataMapping       []EVMArgDef    `json:"dataMapping"`
	Value             string         `json:"value,omitempty"`
}

func (*EVMWriteConfig) kind() Kind { return KindEVMWrite }

// GetSecretConfig configures a secret fetch by logical name.
type GetSecretConfig struct {
	SecretName string `json:"secretName"`
}

func (*GetSecretConfig) kind() Kind { return KindGetSecret }

// CodeNodeConfig configures a user code transform.
type CodeNodeConfig struct {
	Code           string   `json:"code"`
	Language       string   `json:"language,omitempty"`
	ExecutionMode  string   `json:"executionMode"`
	InputVariables []string `json:"inputVariables"`
	Timeout        int      `json:"timeout,omitempty"`
}

func (*CodeNodeConfig) kind() Kind { return KindCodeNode }

// JSONParseConfig configures a JSON parse transform.
type JSONParseConfig struct {
	SourcePath string `json:"sourcePath,omitempty"`
	Strict     *bool  `json:"strict,omitempty"`
}

func (*JSONParseConfig) kind() Kind { return KindJSONParse }

// ABIDataMapping binds one declared ABI parameter to a source expression.
type ABIDataMapping struct {
	ParamName string `json:"paramName"`
	Source    string `json:"source"`
}

// ABIEncodeConfig configures an ABI encode transform.
type ABIEncodeConfig struct {
	ABIParams   []ABIParameter   `json:"abiParams"`
	DataMapping []ABIDataMapping `json:"dataMapping"`
}

func (*ABIEncodeConfig) kind() Kind { return KindABIEncode }

// ABIDecodeConfig configures an ABI decode transform.
type ABIDecodeConfig struct {
	ABIParams   []ABIParameter `json:"abiParams"`
	OutputNames []string       `json:"outputNames"`
}

func (*ABIDecodeConfig) kind() Kind { return KindABIDecode }

// MergeStrategy selects how a merge node combines its inputs.
type MergeStrategy struct {
	Mode            string   `json:"mode"`
	JoinFields      []string `json:"joinFields,omitempty"`
	OutputType      string   `json:"outputType,omitempty"`
	IncludeUnpaired *bool    `json:"includeUnpaired,omitempty"`
	Code            string   `json:"code,omitempty"`
}

// MergeConfig configures a merge node.
type MergeConfig struct {
	Strategy       MergeStrategy `json:"strategy"`
	NumberOfInputs int           `json:"numberOfInputs,omitempty"`
	ClashHandling  string        `json:"clashHandling,omitempty"`
}

func (*MergeConfig) kind() Kind { return KindMerge }

// Condition is one comparison in a filter or if node.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value,omitempty"`
}

// FilterConfig configures a filter node.
type FilterConfig struct {
	Conditions  []Condition `json:"conditions"`
	CombineWith string      `json:"combineWith"`
}

func (*FilterConfig) kind() Kind { return KindFilter }

// IfConfig configures a branching node.
type IfConfig struct {
	Conditions  []Condition `json:"conditions"`
	CombineWith string      `json:"combineWith"`
}

func (*IfConfig) kind() Kind { return KindIf }

// AIConfig configures a model call node.
type AIConfig struct {
	Provider       string   `json:"provider"`
	BaseURL        string   `json:"baseUrl"`
	Model          string   `json:"model"`
	APIKeySecret   string   `json:"apiKeySecret"`
	SystemPrompt   string   `json:"systemPrompt"`
	UserPrompt     string   `json:"userPrompt"`
	Temperature    *float64 `json:"temperature,omitempty"`
	MaxTokens      int      `json:"maxTokens,omitempty"`
	ResponseFormat string   `json:"responseFormat,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	MaxRetries     int      `json:"maxRetries,omitempty"`
}

func (*AIConfig) kind() Kind { return KindAI }

// ReturnConfig configures a workflow return node.
type ReturnConfig struct {
	ReturnExpression string `json:"returnExpression"`
}

func (*ReturnConfig) kind() Kind { return KindReturn }

// LogConfig configures a log node.
type LogConfig struct {
	Level           string `json:"level"`
	MessageTemplate string `json:"messageTemplate"`
}

func (*LogConfig) kind() Kind { return KindLog }

// ErrorConfig configures a terminal error node.
type ErrorConfig struct {
	ErrorMessage string `json:"errorMessage"`
}

func (*ErrorConfig) kind() Kind { return KindError }

// MintTokenConfig configures the mint convenience node.
type MintTokenConfig struct {
	ChainSelectorName    string      `json:"chainSelectorName"`
	TokenContractAddress string      `json:"tokenContractAddress"`
	TokenABI             ABIFunction `json:"tokenAbi"`
	RecipientSource      string      `json:"recipientSource"`
	AmountSource         string      `json:"amountSource"`
	GasLimit             string      `json:"gasLimit"`
}

func (*MintTokenConfig) kind() Kind { return KindMintToken }

// BurnTokenConfig configures the burn convenience node.
type BurnTokenConfig struct {
	ChainSelectorName    string      `json:"chainSelectorName"`
	TokenContractAddress string      `json:"tokenContractAddress"`
	TokenABI             ABIFunction `json:"tokenAbi"`
	FromSource           string      `json:"fromSource"`
	AmountSource         string      `json:"amountSource"`
	GasLimit             string      `json:"gasLimit"`
}

func (*BurnTokenConfig) kind() Kind { return KindBurnToken }

// TransferTokenConfig configures the transfer convenience node.
type TransferTokenConfig struct {
	ChainSelectorName    string      `json:"chainSelectorName"`
	TokenContractAddress string      `json:"tokenContractAddress"`
	TokenABI             ABIFunction `json:"tokenAbi"`
	ToSource             string      `json:"toSource"`
	AmountSource         string      `json:"amountSource"`
	GasLimit             string      `json:"gasLimit"`
}

func (*TransferTokenConfig) kind() Kind { return KindTransferToken }

// CheckKYCConfig configures the KYC verification convenience node.
type CheckKYCConfig struct {
	ProviderURL         string `json:"providerUrl"`
	APIKeySecretName    string `json:"apiKeySecretName"`
	WalletAddressSource string `json:"walletAddressSource"`
}

func (*CheckKYCConfig) kind() Kind { return KindCheckKYC }

// CheckBalanceConfig configures the balance check convenience node.
type CheckBalanceConfig struct {
	ChainSelectorName    string      `json:"chainSelectorName"`
	TokenContractAddress string      `json:"tokenContractAddress"`
	TokenABI             ABIFunction `json:"tokenAbi"`
	AddressSource        string      `json:"addressSource"`
}

func (*CheckBalanceConfig) kind() Kind { return KindCheckBalance }
