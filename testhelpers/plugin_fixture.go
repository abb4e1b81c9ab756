package testhelpers

// PluginArtifactID is the artifact id declared by PluginPOM.
const PluginArtifactID = "elasticsearch-analysis-icu"

// PluginSourceBranch is the maintenance branch PluginSceneSetup creates.
const PluginSourceBranch = "1.x"

// PluginPOM is a plugin manifest on a 2.5.0-SNAPSHOT version depending on Elasticsearch 5.0.0.
const PluginPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
    <modelVersion>4.0.0</modelVersion>
    <groupId>org.elasticsearch</groupId>
    <artifactId>elasticsearch-analysis-icu</artifactId>
    <version>2.5.0-SNAPSHOT</version>
    <packaging>jar</packaging>
    <name>Elasticsearch ICU Analysis plugin</name>
    <description>The ICU Analysis plugin integrates Lucene ICU module into elasticsearch.</description>
    <url>https://github.com/elastic/elasticsearch-analysis-icu/</url>

    <parent>
        <groupId>org.elasticsearch</groupId>
        <artifactId>elasticsearch-parent</artifactId>
        <version>5.0.0</version>
    </parent>

    <properties>
        <elasticsearch.version>5.0.0</elasticsearch.version>
    </properties>
</project>
`

// PluginREADME is the plugin documentation with a snapshot header, an install line and a version table.
const PluginREADME = "ICU Analysis for Elasticsearch\n" +
	"==============================\n" +
	"\n" +
	"In order to install the plugin, run:\n" +
	"\n" +
	"```sh\n" +
	"bin/plugin install elasticsearch/elasticsearch-analysis-icu/2.4.0\n" +
	"```\n" +
	"\n" +
	"## Version 2.5.0-SNAPSHOT for Elasticsearch: 5.0\n" +
	"\n" +
	"|       ICU Analysis Plugin     |    elasticsearch    | Release date |\n" +
	"|-------------------------------|---------------------|:------------:|\n" +
	"|    1.x                        | Build from source   | [2.5.0-SNAPSHOT](https://github.com/elastic/elasticsearch-analysis-icu/tree/1.x/#version-250-snapshot-for-elasticsearch-50) |\n"

// PluginSceneSetup commits the plugin fixture on master, creates the 1.x branch from it and
// pushes both to origin. The scene is left on 1.x.
func PluginSceneSetup(scene *Scene) error {
	repo := scene.Repo
	if err := repo.WriteFile("pom.xml", PluginPOM); err != nil {
		return err
	}
	if err := repo.CommitFile("README.md", PluginREADME, "initial plugin"); err != nil {
		return err
	}
	if err := repo.RunGitCommand("add", "pom.xml"); err != nil {
		return err
	}
	if err := repo.RunGitCommand("commit", "-m", "add pom"); err != nil {
		return err
	}
	if err := repo.PushBranch("origin", "master"); err != nil {
		return err
	}
	if err := repo.CreateAndCheckoutBranch(PluginSourceBranch); err != nil {
		return err
	}
	return repo.PushBranch("origin", PluginSourceBranch)
}
