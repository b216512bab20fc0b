package code

// Namespace is the base IRI of the embedded default ontology.
const Namespace = "https://semcode.dev/ontology#"

// EntityNamespace is the base IRI for entity instances minted by the engine.
const EntityNamespace = "https://semcode.dev/entity/"

// Standard RDF, RDFS and XSD IRIs. These do not depend on the ontology.
const (
	RDFType      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFSLabel    = "http://www.w3.org/2000/01/rdf-schema#label"
	RDFSComment  = "http://www.w3.org/2000/01/rdf-schema#comment"
	RDFSSeeAlso  = "http://www.w3.org/2000/01/rdf-schema#seeAlso"
	RDFSResource = "http://www.w3.org/2000/01/rdf-schema#Resource"

	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
)

// Generic class names used as fallbacks.
const (
	ClassCodeConstruct            = "CodeConstruct"
	ClassDigitalFile              = "DigitalFile"
	ClassInformationContentEntity = "InformationContentEntity"
)

// Structural class names.
const (
	ClassRepository        = "Repository"
	ClassSoftwareCode      = "SoftwareCode"
	ClassSoftwareFramework = "SoftwareFramework"
	ClassSoftwarePackage   = "SoftwarePackage"
	ClassTypeReference     = "TypeReference"
	ClassTypeDefinition    = "TypeDefinition"
)

// Construct class names. They match the construct kinds one to one.
const (
	ClassClassDefinition      = "ClassDefinition"
	ClassFunctionDefinition   = "FunctionDefinition"
	ClassParameter            = "Parameter"
	ClassVariableDeclaration  = "VariableDeclaration"
	ClassImportDeclaration    = "ImportDeclaration"
	ClassAttributeDeclaration = "AttributeDeclaration"
	ClassEnumDefinition       = "EnumDefinition"
	ClassInterfaceDefinition  = "InterfaceDefinition"
	ClassStructDefinition     = "StructDefinition"
	ClassTraitDefinition      = "TraitDefinition"
	ClassPackageDeclaration   = "PackageDeclaration"
	ClassFunctionCallSite     = "FunctionCallSite"
	ClassCodeComment          = "CodeComment"
)

// Generic relation used when a specific one is absent or not admissible.
// It is its own inverse.
const PropRelatedTo = "relatedTo"

// Object property names.
const (
	// Repository and file structure
	PropHasFile             = "hasFile"
	PropBelongsToRepository = "belongsToRepository"
	PropHasContent          = "hasContent"
	PropIsContentOf         = "isContentOf"

	// Content to construct containment
	PropHasCodePart  = "hasCodePart"
	PropIsCodePartOf = "isCodePartOf"

	// Membership
	PropHasMethod        = "hasMethod"
	PropIsMethodOf       = "isMethodOf"
	PropHasParameter     = "hasParameter"
	PropIsParameterOf    = "isParameterOf"
	PropHasAttribute     = "hasAttribute"
	PropIsAttributeOf    = "isAttributeOf"
	PropHasNestedType    = "hasNestedType"
	PropIsNestedTypeOf   = "isNestedTypeOf"
	PropHasLocalElement  = "hasLocalElement"
	PropIsLocalElementOf = "isLocalElementOf"

	// Inheritance and implementation
	PropExtendsType         = "extendsType"
	PropIsExtendedBy        = "isExtendedBy"
	PropImplementsInterface = "implementsInterface"
	PropIsImplementedBy     = "isImplementedBy"
	PropEmbedsType          = "embedsType"
	PropIsEmbeddedIn        = "isEmbeddedIn"

	// Typing
	PropHasDeclaredType  = "hasDeclaredType"
	PropIsDeclaredTypeOf = "isDeclaredTypeOf"
	PropReturnsType      = "returnsType"
	PropIsReturnTypeOf   = "isReturnTypeOf"

	// Call graph
	PropHasCallSite   = "hasCallSite"
	PropIsCallSiteOf  = "isCallSiteOf"
	PropCallsFunction = "callsFunction"
	PropIsCalledBy    = "isCalledBy"
	PropInvokes       = "invokes"
	PropIsInvokedBy   = "isInvokedBy"

	// Usage and access
	PropUsesDeclaration   = "usesDeclaration"
	PropIsUsedBy          = "isUsedBy"
	PropAccessesAttribute = "accessesAttribute"
	PropIsAccessedBy      = "isAccessedBy"

	// Documentation
	PropDocuments      = "documents"
	PropIsDocumentedBy = "isDocumentedBy"

	// Imports, frameworks and packages
	PropUsesFramework         = "usesFramework"
	PropIsFrameworkUsedBy     = "isFrameworkUsedBy"
	PropDeclaresPackage       = "declaresPackage"
	PropIsPackageDeclaredIn   = "isPackageDeclaredIn"
	PropRefersToPackage       = "refersToPackage"
	PropIsPackageReferencedBy = "isPackageReferencedBy"

	// Styling and testing
	PropIsStyledBy   = "isStyledBy"
	PropStyles       = "styles"
	PropTestsContent = "testsContent"
	PropIsTestedBy   = "isTestedBy"
)

// Datatype property names.
const (
	PropHasCanonicalName        = "hasCanonicalName"
	PropHasSourceText           = "hasSourceText"
	PropStartsAtLine            = "startsAtLine"
	PropEndsAtLine              = "endsAtLine"
	PropHasAccessModifier       = "hasAccessModifier"
	PropIsAsync                 = "isAsync"
	PropIsFinal                 = "isFinal"
	PropIsStatic                = "isStatic"
	PropHasTokenCount           = "hasTokenCount"
	PropHasLineCount            = "hasLineCount"
	PropHasCyclomaticComplexity = "hasCyclomaticComplexity"
	PropHasDecorator            = "hasDecorator"
	PropHasImportPath           = "hasImportPath"
	PropHasAlias                = "hasAlias"
	PropHasCalleeName           = "hasCalleeName"
	PropHasEnumMember           = "hasEnumMember"
	PropIsDocComment            = "isDocComment"
	PropHasDefaultValue         = "hasDefaultValue"
	PropHasLanguage             = "hasLanguage"

	// File and content attributes
	PropHasRelativePath             = "hasRelativePath"
	PropHasFileName                 = "hasFileName"
	PropHasExtension                = "hasExtension"
	PropHasSizeInBytes              = "hasSizeInBytes"
	PropHasModificationTime         = "hasModificationTime"
	PropHasContentHash              = "hasContentHash"
	PropHasRepositoryID             = "hasRepositoryId"
	PropHasClassificationConfidence = "hasClassificationConfidence"
)
