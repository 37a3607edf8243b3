package gen

import (
	"bytes"
	"context"
	"fmt"
	"go/types"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"testing"
	"text/template"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
)

// requireGoTool returns the go command, skipping tests that build generated code
// when it is unavailable or -short is set.
func requireGoTool(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds generated adapters")
	}
	goTool, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not found")
	}
	return goTool
}

// scratchPackageDir creates a directory inside this module so generated
// files resolve nodekit and the third-party imports through go.mod.
func scratchPackageDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp(".", "adaptercheck")
	require.NoError(t, err)
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(abs) })
	return abs
}

func writeAdapter(t *testing.T, dir string, res *Result) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	src, err := AdapterFile("nodes", res)
	require.NoError(t, err, res.NodeName)
	require.NoError(t, os.WriteFile(filepath.Join(dir, AdapterFileName(res)), src, 0o644))
}

func TestAdapterFile_TypeChecksAgainstNodekit(t *testing.T) {
	requireGoTool(t)
	root := scratchPackageDir(t)

	byDir := map[string]*Result{}
	for i, tc := range specializationCases() {
		res := Route(tc.class, tc.node)
		dir := fmt.Sprintf("case%02d", i)
		writeAdapter(t, filepath.Join(root, dir), res)
		byDir[dir] = res
	}

	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax,
		Dir:  root,
	}, "./...")
	require.NoError(t, err)
	require.Len(t, pkgs, len(byDir))

	for _, p := range pkgs {
		res := byDir[path.Base(p.PkgPath)]
		require.NotNil(t, res, p.PkgPath)
		for _, e := range p.Errors {
			t.Errorf("%s (%s): %v", res.NodeName, res.Specialization(), e)
		}
		if p.Types == nil {
			continue
		}
		obj := p.Types.Scope().Lookup(res.TypeName)
		if !assert.NotNil(t, obj, "%s not declared", res.TypeName) {
			continue
		}
		ms := types.NewMethodSet(types.NewPointer(obj.Type()))
		assert.NotNil(t, ms.Lookup(p.Types, "Execute"), "%s lacks Execute", res.TypeName)
	}
}

// githubRunContext is the GitHub fixture plus a bodyless DELETE operation
func githubRunContext() contract.Context {
	node := githubContext()
	node.Properties[2].Options = append(node.Properties[2].Options, contract.PropertyOption{Name: "Unlock", Value: "unlock"})
	node.TSCode = `
if (resource === 'issue') {
	if (operation === 'get') {
		responseData = await githubApiRequest.call(this, 'GET', ` + "`/repos/${owner}/${repository}/issues/${issueNumber}`" + `, {});
	} else if (operation === 'create') {
		responseData = await githubApiRequest.call(this, 'POST', ` + "`/repos/${owner}/${repository}/issues`" + `, body);
	} else if (operation === 'unlock') {
		responseData = await githubApiRequest.call(this, 'DELETE', ` + "`/repos/${owner}/${repository}/issues/${issueNumber}/lock`" + `, {});
	}
} else if (resource === 'repository') {
	if (operation === 'getIssues') {
		responseData = await githubApiRequestAllItems.call(this, 'GET', ` + "`/repos/${owner}/${repository}/issues`" + `, {}, qs);
	}
}`
	return node
}

func TestAdapterFile_GitHubAdapterRuns(t *testing.T) {
	goTool := requireGoTool(t)

	res := Route(ClassHTTPREST, githubRunContext())
	require.Contains(t, res.Extras["operations"], "issue:unlock")

	dir := scratchPackageDir(t)
	writeAdapter(t, dir, res)

	driver := template.Must(template.ParseFiles(filepath.Join("testdata", "github_adapter_test.go.tmpl")))
	var buf bytes.Buffer
	require.NoError(t, driver.Execute(&buf, res))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "adapter_test.go"), buf.Bytes(), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, goTool, "test", "-count=1", "-vet=off", ".")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s", out)
}
