package fixture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Shopify/go-lua"
)

const sceneTypeName = "scene"

func loadLuaFile(path string) (*Fixture, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return decodeLua(filepath.Base(path), string(source))
}

// decodeLua runs a fixture script. name is used in Lua error messages.
func decodeLua(name, source string) (*Fixture, error) {
	state := newLuaState()
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return nil, invalid(fmt.Sprintf("load lua: %v", err))
	}
	return runLua(state)
}

func newLuaState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerSceneType(state)
	registerSceneConstructor(state)
	return state
}

func runLua(state *lua.State) (*Fixture, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, invalid(fmt.Sprintf("run lua: %v", err))
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, invalid("fixture script must return Scene")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	fixture, ok := ud.(*Fixture)
	if !ok || fixture == nil {
		return nil, invalid("fixture script returned an invalid Scene")
	}
	return fixture, nil
}

func registerSceneType(state *lua.State) {
	lua.NewMetaTable(state, sceneTypeName)
	state.NewTable()
	lua.SetFunctions(state, sceneMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerSceneConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, sceneConstructor, 0)
	state.SetGlobal("Scene")
}

var sceneConstructor = []lua.RegistryFunction{
	{Name: "new", Function: sceneNew},
}

var sceneMethods = []lua.RegistryFunction{
	{Name: "actor", Function: sceneActor},
	{Name: "token", Function: sceneToken},
}

func sceneNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Fixture{Scene: name})
	lua.SetMetaTableNamed(state, sceneTypeName)
	return 1
}

// sceneActor declares an actor and returns its key for use in token calls.
func sceneActor(state *lua.State) int {
	fixture := checkScene(state)
	lua.CheckType(state, 2, lua.TypeTable)
	actor := Actor{
		Key:  stringField(state, 2, "key"),
		Name: stringField(state, 2, "name"),
		Type: stringField(state, 2, "type"),
	}
	if actor.Key == "" {
		actor.Key = actor.Name
	}
	fixture.Actors = append(fixture.Actors, actor)
	state.PushString(actor.Key)
	return 1
}

func sceneToken(state *lua.State) int {
	fixture := checkScene(state)
	lua.CheckType(state, 2, lua.TypeTable)
	token := Token{
		Name:  stringField(state, 2, "name"),
		Actor: stringField(state, 2, "actor"),
	}
	state.Field(2, "ring")
	switch state.TypeOf(-1) {
	case lua.TypeNil:
	case lua.TypeTable:
		ring := state.AbsIndex(-1)
		token.Ring = Ring{
			Enabled:    boolField(state, ring, "enabled"),
			Color:      stringField(state, ring, "color"),
			Background: stringField(state, ring, "background"),
		}
	default:
		lua.Errorf(state, "token field ring must be a table")
	}
	state.Pop(1)
	fixture.Tokens = append(fixture.Tokens, token)
	return 0
}

func checkScene(state *lua.State) *Fixture {
	ud := lua.CheckUserData(state, 1, sceneTypeName)
	if fixture, ok := ud.(*Fixture); ok && fixture != nil {
		return fixture
	}
	lua.ArgumentError(state, 1, "scene expected")
	return nil
}

func stringField(state *lua.State, index int, key string) string {
	state.Field(index, key)
	defer state.Pop(1)
	switch state.TypeOf(-1) {
	case lua.TypeNil:
		return ""
	case lua.TypeString:
		value, _ := state.ToString(-1)
		return value
	default:
		lua.Errorf(state, "field %s must be a string", key)
		return ""
	}
}

func boolField(state *lua.State, index int, key string) bool {
	state.Field(index, key)
	defer state.Pop(1)
	switch state.TypeOf(-1) {
	case lua.TypeNil:
		return false
	case lua.TypeBoolean:
		return state.ToBoolean(-1)
	default:
		lua.Errorf(state, "field %s must be a boolean", key)
		return false
	}
}
