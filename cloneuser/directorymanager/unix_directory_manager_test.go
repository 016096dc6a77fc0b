package directorymanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	cm "github.com/steelcutops/cloneuser/cloneuser/commandmanager"
)

type MockCommandManager struct {
	mock.Mock
}

func (m *MockCommandManager) Run(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	called := m.MethodCalled("Run", config.Command, config.Args)
	return called.Get(0).(cm.CommandResult), called.Error(1)
}

func TestLookupUserFound(t *testing.T) {
	mockCmd := &MockCommandManager{}
	mockCmd.On("Run", "getent", []string{"passwd", "demo"}).Return(cm.CommandResult{
		STDOUT: "demo:x:1000:1000:Demo User:/home/demo:/bin/bash\n",
	}, nil)

	manager := &UnixDirectoryManager{CommandManager: mockCmd}

	user, found, err := manager.LookupUser(context.Background(), "demo")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, User{
		Username: "demo",
		UID:      1000,
		GID:      1000,
		Comment:  "Demo User",
		HomeDir:  "/home/demo",
		Shell:    "/bin/bash",
	}, user)
	mockCmd.AssertExpectations(t)
}

func TestLookupUserAbsent(t *testing.T) {
	mockCmd := &MockCommandManager{}
	mockCmd.On("Run", "getent", []string{"passwd", "ghost"}).Return(cm.CommandResult{
		ExitCode: 2,
	}, errors.New("exit status 2"))

	manager := &UnixDirectoryManager{CommandManager: mockCmd}

	_, found, err := manager.LookupUser(context.Background(), "ghost")
	assert.NoError(t, err, "absence must not be an error")
	assert.False(t, found)
}

func TestLookupUserCommandFailure(t *testing.T) {
	mockCmd := &MockCommandManager{}
	mockCmd.On("Run", "getent", []string{"passwd", "demo"}).Return(cm.CommandResult{
		ExitCode: 1,
	}, errors.New("exit status 1"))

	manager := &UnixDirectoryManager{CommandManager: mockCmd}

	_, _, err := manager.LookupUser(context.Background(), "demo")
	assert.Error(t, err)
}

func TestLookupUserMalformedEntry(t *testing.T) {
	mockCmd := &MockCommandManager{}
	mockCmd.On("Run", "getent", []string{"passwd", "demo"}).Return(cm.CommandResult{
		STDOUT: "demo:x:1000\n",
	}, nil)

	manager := &UnixDirectoryManager{CommandManager: mockCmd}

	_, _, err := manager.LookupUser(context.Background(), "demo")
	assert.Error(t, err)
}

func TestListGroups(t *testing.T) {
	mockCmd := &MockCommandManager{}
	mockCmd.On("Run", "getent", []string{"group"}).Return(cm.CommandResult{
		STDOUT: "root:x:0:\n" +
			"sudo:x:27:demo,other\n" +
			"i2c:x:998:demo\n" +
			"malformed\n" +
			"\n",
	}, nil)

	manager := &UnixDirectoryManager{CommandManager: mockCmd}

	groups, err := manager.ListGroups(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []Group{
		{Name: "root", GID: 0, Members: []string{}},
		{Name: "sudo", GID: 27, Members: []string{"demo", "other"}},
		{Name: "i2c", GID: 998, Members: []string{"demo"}},
	}, groups)
}

func TestListGroupsCommandFailure(t *testing.T) {
	mockCmd := &MockCommandManager{}
	mockCmd.On("Run", "getent", []string{"group"}).Return(cm.CommandResult{
		ExitCode: 1,
	}, errors.New("exit status 1"))

	manager := &UnixDirectoryManager{CommandManager: mockCmd}

	_, err := manager.ListGroups(context.Background())
	assert.Error(t, err)
}
