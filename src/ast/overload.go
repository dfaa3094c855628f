package ast

// UnaryOperator enumerates the syntactic unary operators.
type UnaryOperator int

const (
	UnaryPlus UnaryOperator = iota
	UnaryMinus
	UnaryNot
	UnaryAddressOf
	UnaryDeref
)

// UnaryOverload is the specific typed behavior the type checker selects for
// a UnaryOp.
type UnaryOverload int

const (
	UnaryOverloadNone UnaryOverload = iota
	IntegerIdentity                 // +x : Integer -> Integer
	IntegerNegation                 // -x : Integer -> Integer
	BooleanNegation                 // !x : Boolean -> Boolean
	AddressOf                       // &x : T -> const &T
	Dereferenciation                // x^ : &T -> T
)

// BinaryOperator enumerates the syntactic binary operators.
type BinaryOperator int

const (
	BinaryAdd BinaryOperator = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryAnd
	BinaryOr
	BinaryEq
	BinaryNe
	BinaryLt
	BinaryGt
	BinaryLe
	BinaryGe
)

// BinaryOverload is the specific typed behavior the type checker selects
// for a BinaryOp.
type BinaryOverload int

const (
	BinaryOverloadNone BinaryOverload = iota
	IntegerAdd
	IntegerSub
	IntegerMul
	IntegerDiv
	IntegerMod
	IntegerLt
	IntegerGt
	IntegerLe
	IntegerGe
	IntegerEq
	IntegerNe
	CharacterAdd      // (Character, Integer) -> Character
	CharacterSub      // (Character, Character) -> Integer
	CharacterEq
	CharacterNe
	BooleanAnd
	BooleanOr
	BooleanEq
	BooleanNe
	ReferenceIndexation // (&T, Integer) -> &T
)
