package lsclient

const (
	biDiagramPrefix       = "bi-diagram"
	serviceDesignerPrefix = "service-designer"
)

// Method names understood by the language service.
const (
	MethodExpressionCompletions = biDiagramPrefix + "/getExpressionCompletions"
	MethodDataMapperCompletions = biDiagramPrefix + "/getDataMapperCompletions"
	MethodVisibleTypes          = biDiagramPrefix + "/getVisibleTypes"
	MethodExpressionDiagnostics = biDiagramPrefix + "/getExpressionDiagnostics"
	MethodSignatureHelp         = biDiagramPrefix + "/getSignatureHelp"
	MethodUpdateImports         = biDiagramPrefix + "/updateImports"
	MethodEndOfFile             = biDiagramPrefix + "/getEndOfFile"
	MethodFormDidOpen           = biDiagramPrefix + "/formDidOpen"
	MethodFormDidClose          = biDiagramPrefix + "/formDidClose"
	MethodServiceClassModel     = biDiagramPrefix + "/getServiceClassModel"
	MethodAddClassField         = biDiagramPrefix + "/addClassField"
	MethodUpdateClassField      = biDiagramPrefix + "/updateClassField"
	MethodRenameIdentifier      = biDiagramPrefix + "/renameIdentifier"

	MethodAddFunctionSourceCode    = serviceDesignerPrefix + "/addFunctionSourceCode"
	MethodUpdateResourceSourceCode = serviceDesignerPrefix + "/updateResourceSourceCode"
)

// Notifications pushed by the host.
const (
	NotificationThemeChanged          = "themeChanged"
	NotificationProjectContentUpdated = "projectContentUpdated"
)
